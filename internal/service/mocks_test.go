package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"petwell/internal/ai"
	"petwell/internal/apperror"
	"petwell/internal/model"
	"petwell/internal/repository"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// Service tests exercise validation, enrichment and error mapping without
// a database; the SQL behaviour itself is covered by the sqlite package's
// own tests against :memory: databases.
//
// The mocks reproduce the one repository contract the services lean on:
// every read/update/delete is ownership-scoped, and foreign rows are
// indistinguishable from missing rows (ErrNotFound).

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.Duplicate("username")
		}
		if u.Email == user.Email {
			return apperror.Duplicate("email")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == identifier || u.Email == identifier {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (m *mockUserRepo) GetUserByVerificationToken(_ context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.NotFound("user")
	}
	for _, u := range m.users {
		if u.VerificationToken == token {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user")
	}
	user.UpdatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

type mockPetRepo struct {
	pets   map[int64]*model.Pet
	nextID int64
}

func newMockPetRepo() *mockPetRepo {
	return &mockPetRepo{pets: make(map[int64]*model.Pet)}
}

func (m *mockPetRepo) CreatePet(_ context.Context, pet *model.Pet) error {
	m.nextID++
	pet.ID = m.nextID
	pet.CreatedAt = time.Now()
	pet.UpdatedAt = pet.CreatedAt
	stored := *pet
	m.pets[pet.ID] = &stored
	return nil
}

func (m *mockPetRepo) GetPet(_ context.Context, ownerID string, id int64) (*model.Pet, error) {
	pet, ok := m.pets[id]
	if !ok || pet.UserID != ownerID {
		return nil, apperror.NotFound("pet")
	}
	result := *pet
	return &result, nil
}

func (m *mockPetRepo) ListPets(_ context.Context, ownerID string, opts repository.ListOptions) ([]model.Pet, error) {
	result := []model.Pet{}
	for _, p := range m.pets {
		if p.UserID == ownerID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if opts.Offset >= len(result) {
		return []model.Pet{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockPetRepo) UpdatePet(_ context.Context, ownerID string, pet *model.Pet) error {
	existing, ok := m.pets[pet.ID]
	if !ok || existing.UserID != ownerID {
		return apperror.NotFound("pet")
	}
	pet.UpdatedAt = time.Now()
	stored := *pet
	m.pets[pet.ID] = &stored
	return nil
}

func (m *mockPetRepo) DeletePet(_ context.Context, ownerID string, id int64) error {
	existing, ok := m.pets[id]
	if !ok || existing.UserID != ownerID {
		return apperror.NotFound("pet")
	}
	delete(m.pets, id)
	return nil
}

// mockActivityRepo enforces the transitive ownership rule by consulting the
// pet repo, the same way the SQL does with its pet_id subquery.
type mockActivityRepo struct {
	pets       *mockPetRepo
	activities map[int64]*model.Activity
	nextID     int64
}

func newMockActivityRepo(pets *mockPetRepo) *mockActivityRepo {
	return &mockActivityRepo{pets: pets, activities: make(map[int64]*model.Activity)}
}

func (m *mockActivityRepo) ownsActivity(ownerID string, a *model.Activity) bool {
	pet, ok := m.pets.pets[a.PetID]
	return ok && pet.UserID == ownerID
}

func (m *mockActivityRepo) CreateActivity(_ context.Context, ownerID string, activity *model.Activity) error {
	pet, ok := m.pets.pets[activity.PetID]
	if !ok || pet.UserID != ownerID {
		return apperror.NotFound("pet")
	}
	m.nextID++
	activity.ID = m.nextID
	if activity.ActivityDate.IsZero() {
		activity.ActivityDate = time.Now()
	}
	activity.CreatedAt = time.Now()
	activity.UpdatedAt = activity.CreatedAt
	stored := *activity
	m.activities[activity.ID] = &stored
	return nil
}

func (m *mockActivityRepo) GetActivity(_ context.Context, ownerID string, id int64) (*model.Activity, error) {
	a, ok := m.activities[id]
	if !ok || !m.ownsActivity(ownerID, a) {
		return nil, apperror.NotFound("activity")
	}
	result := *a
	return &result, nil
}

func (m *mockActivityRepo) ListActivities(_ context.Context, ownerID string, f repository.ActivityFilter) ([]model.Activity, error) {
	result := []model.Activity{}
	for _, a := range m.activities {
		if !m.ownsActivity(ownerID, a) {
			continue
		}
		if f.PetID != 0 && a.PetID != f.PetID {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ActivityDate.After(result[j].ActivityDate)
	})
	if f.Offset >= len(result) {
		return []model.Activity{}, nil
	}
	result = result[f.Offset:]
	if f.Limit > 0 && f.Limit < len(result) {
		result = result[:f.Limit]
	}
	return result, nil
}

func (m *mockActivityRepo) UpdateActivity(_ context.Context, ownerID string, activity *model.Activity) error {
	existing, ok := m.activities[activity.ID]
	if !ok || !m.ownsActivity(ownerID, existing) {
		return apperror.NotFound("activity")
	}
	activity.UpdatedAt = time.Now()
	stored := *activity
	m.activities[activity.ID] = &stored
	return nil
}

func (m *mockActivityRepo) DeleteActivity(_ context.Context, ownerID string, id int64) error {
	existing, ok := m.activities[id]
	if !ok || !m.ownsActivity(ownerID, existing) {
		return apperror.NotFound("activity")
	}
	delete(m.activities, id)
	return nil
}

type mockMedicationRepo struct {
	pets        *mockPetRepo
	medications map[int64]*model.Medication
	nextID      int64
}

func newMockMedicationRepo(pets *mockPetRepo) *mockMedicationRepo {
	return &mockMedicationRepo{pets: pets, medications: make(map[int64]*model.Medication)}
}

func (m *mockMedicationRepo) ownsMedication(ownerID string, med *model.Medication) bool {
	pet, ok := m.pets.pets[med.PetID]
	return ok && pet.UserID == ownerID
}

func (m *mockMedicationRepo) CreateMedication(_ context.Context, ownerID string, med *model.Medication) error {
	pet, ok := m.pets.pets[med.PetID]
	if !ok || pet.UserID != ownerID {
		return apperror.NotFound("pet")
	}
	m.nextID++
	med.ID = m.nextID
	if med.StartDate.IsZero() {
		med.StartDate = time.Now()
	}
	med.CreatedAt = time.Now()
	med.UpdatedAt = med.CreatedAt
	stored := *med
	m.medications[med.ID] = &stored
	return nil
}

func (m *mockMedicationRepo) GetMedication(_ context.Context, ownerID string, id int64) (*model.Medication, error) {
	med, ok := m.medications[id]
	if !ok || !m.ownsMedication(ownerID, med) {
		return nil, apperror.NotFound("medication")
	}
	result := *med
	return &result, nil
}

func (m *mockMedicationRepo) ListMedications(_ context.Context, ownerID string, f repository.MedicationFilter) ([]model.Medication, error) {
	result := []model.Medication{}
	for _, med := range m.medications {
		if !m.ownsMedication(ownerID, med) {
			continue
		}
		if f.PetID != 0 && med.PetID != f.PetID {
			continue
		}
		if f.ActiveOnly && !med.IsActive {
			continue
		}
		result = append(result, *med)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.After(result[j].StartDate)
	})
	return result, nil
}

func (m *mockMedicationRepo) UpdateMedication(_ context.Context, ownerID string, med *model.Medication) error {
	existing, ok := m.medications[med.ID]
	if !ok || !m.ownsMedication(ownerID, existing) {
		return apperror.NotFound("medication")
	}
	med.UpdatedAt = time.Now()
	stored := *med
	m.medications[med.ID] = &stored
	return nil
}

func (m *mockMedicationRepo) DeleteMedication(_ context.Context, ownerID string, id int64) error {
	existing, ok := m.medications[id]
	if !ok || !m.ownsMedication(ownerID, existing) {
		return apperror.NotFound("medication")
	}
	delete(m.medications, id)
	return nil
}

type mockReminderRepo struct {
	reminders map[int64]*model.Reminder
	nextID    int64
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{reminders: make(map[int64]*model.Reminder)}
}

func (m *mockReminderRepo) CreateReminder(_ context.Context, reminder *model.Reminder) error {
	m.nextID++
	reminder.ID = m.nextID
	reminder.CreatedAt = time.Now()
	stored := *reminder
	m.reminders[reminder.ID] = &stored
	return nil
}

func (m *mockReminderRepo) GetReminder(_ context.Context, ownerID string, id int64) (*model.Reminder, error) {
	r, ok := m.reminders[id]
	if !ok || r.UserID != ownerID {
		return nil, apperror.NotFound("reminder")
	}
	result := *r
	return &result, nil
}

func (m *mockReminderRepo) ListReminders(_ context.Context, ownerID string, f repository.ReminderFilter) ([]model.Reminder, error) {
	result := []model.Reminder{}
	for _, r := range m.reminders {
		if r.UserID != ownerID {
			continue
		}
		if f.Completed != nil && r.IsCompleted != *f.Completed {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ReminderDate.Before(result[j].ReminderDate)
	})
	return result, nil
}

func (m *mockReminderRepo) UpdateReminder(_ context.Context, ownerID string, reminder *model.Reminder) error {
	existing, ok := m.reminders[reminder.ID]
	if !ok || existing.UserID != ownerID {
		return apperror.NotFound("reminder")
	}
	stored := *reminder
	m.reminders[reminder.ID] = &stored
	return nil
}

func (m *mockReminderRepo) DeleteReminder(_ context.Context, ownerID string, id int64) error {
	existing, ok := m.reminders[id]
	if !ok || existing.UserID != ownerID {
		return apperror.NotFound("reminder")
	}
	delete(m.reminders, id)
	return nil
}

// =========================================================================
// FAKE COLLABORATORS
// =========================================================================

// stubClient is a canned ai.Client. Because it's not ai.Disabled the
// Assistant treats it as a configured provider, so tests can exercise both
// the happy path and the "provider configured but failing" path.
type stubClient struct {
	reply string
	err   error

	calls        int
	lastMessages []ai.Message
}

func (c *stubClient) Complete(_ context.Context, messages []ai.Message, _ ai.Options) (string, error) {
	c.calls++
	c.lastMessages = messages
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

// mockMailer records sends. The mutex matters: the account service sends
// email from a goroutine, so tests poll waitForVerification instead of
// asserting immediately.
type mockMailer struct {
	mu            sync.Mutex
	verifications []string // tokens, in send order
	welcomes      []string // recipient emails
}

func (m *mockMailer) SendVerification(_, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, token)
	return nil
}

func (m *mockMailer) SendWelcome(toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, toEmail)
	return nil
}

func (m *mockMailer) verificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.verifications)
}

func (m *mockMailer) waitForVerification(t *testing.T, want int) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		if len(m.verifications) >= want {
			token := m.verifications[want-1]
			m.mu.Unlock()
			return token
		}
		m.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no verification email sent (want at least %d)", want)
	return ""
}

func (m *mockMailer) waitForWelcome(t *testing.T) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		if len(m.welcomes) > 0 {
			email := m.welcomes[0]
			m.mu.Unlock()
			return email
		}
		m.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no welcome email sent")
	return ""
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
