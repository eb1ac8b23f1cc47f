// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation.
//
// OWNERSHIP SCOPING:
// Every read, update and delete on a domain entity takes the owner's user
// ID and folds it into the query predicate — directly for pets and
// reminders, transitively through pet ownership for activities and
// medications. There is deliberately NO GetByID-without-owner variant:
// this interface is the chokepoint that makes a forgotten ownership filter
// impossible to express.
package repository

import (
	"context"

	"petwell/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ActivityFilter narrows activity listings. PetID of 0 means all of the
// owner's pets.
type ActivityFilter struct {
	ListOptions
	PetID int64
}

// MedicationFilter narrows medication listings.
type MedicationFilter struct {
	ListOptions
	PetID      int64
	ActiveOnly bool
}

// ReminderFilter narrows reminder listings. Completed is a tri-state:
// nil means both pending and completed.
type ReminderFilter struct {
	Completed *bool
}

type UserRepository interface {
	// Create persists a new user. A username/email uniqueness violation is
	// returned as apperror.ErrDuplicate — including when the conflict comes
	// from the database constraint after a registration race.
	Create(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByIdentifier matches username OR email, for login.
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type PetRepository interface {
	CreatePet(ctx context.Context, pet *model.Pet) error
	GetPet(ctx context.Context, ownerID string, id int64) (*model.Pet, error)
	ListPets(ctx context.Context, ownerID string, opts ListOptions) ([]model.Pet, error)
	UpdatePet(ctx context.Context, ownerID string, pet *model.Pet) error
	// DeletePet cascades to the pet's activities, medications and reminders.
	DeletePet(ctx context.Context, ownerID string, id int64) error
}

type ActivityRepository interface {
	// CreateActivity fails with ErrNotFound unless the activity's pet is
	// owned by ownerID.
	CreateActivity(ctx context.Context, ownerID string, activity *model.Activity) error
	GetActivity(ctx context.Context, ownerID string, id int64) (*model.Activity, error)
	// ListActivities returns newest first (activity_date descending).
	ListActivities(ctx context.Context, ownerID string, f ActivityFilter) ([]model.Activity, error)
	UpdateActivity(ctx context.Context, ownerID string, activity *model.Activity) error
	DeleteActivity(ctx context.Context, ownerID string, id int64) error
}

type MedicationRepository interface {
	CreateMedication(ctx context.Context, ownerID string, med *model.Medication) error
	GetMedication(ctx context.Context, ownerID string, id int64) (*model.Medication, error)
	// ListMedications returns most recently started first.
	ListMedications(ctx context.Context, ownerID string, f MedicationFilter) ([]model.Medication, error)
	UpdateMedication(ctx context.Context, ownerID string, med *model.Medication) error
	DeleteMedication(ctx context.Context, ownerID string, id int64) error
}

type ReminderRepository interface {
	CreateReminder(ctx context.Context, reminder *model.Reminder) error
	GetReminder(ctx context.Context, ownerID string, id int64) (*model.Reminder, error)
	// ListReminders returns soonest due first (reminder_date ascending).
	ListReminders(ctx context.Context, ownerID string, f ReminderFilter) ([]model.Reminder, error)
	UpdateReminder(ctx context.Context, ownerID string, reminder *model.Reminder) error
	DeleteReminder(ctx context.Context, ownerID string, id int64) error
}
