package sqlite

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only for the duration of
// the test — fast, isolated, destroyed on close. Every schema feature the
// code relies on (UNIQUE constraints, ON DELETE CASCADE, the foreign_keys
// pragma) is live in these tests, so the ownership and cascade behaviour
// is tested for real, not mocked.

import (
	"context"
	"testing"
	"time"

	"petwell/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser inserts a user with sane defaults. username doubles as the
// local part of the email so each seeded user stays unique.
func seedUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "$2a$04$fakehashfortesting0000000000000000000000000000000000",
		IsVerified:   true,
		IsActive:     true,
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}
	return user
}

func seedPet(t *testing.T, db *DB, ownerID, name string) *model.Pet {
	t.Helper()
	pet := &model.Pet{
		UserID:  ownerID,
		Name:    name,
		Species: model.SpeciesDog,
	}
	if err := db.CreatePet(context.Background(), pet); err != nil {
		t.Fatalf("failed to seed pet %q: %v", name, err)
	}
	return pet
}

func seedActivity(t *testing.T, db *DB, ownerID string, petID int64, title string, date time.Time) *model.Activity {
	t.Helper()
	activity := &model.Activity{
		PetID:        petID,
		Type:         model.ActivityWalk,
		Title:        title,
		ActivityDate: date,
	}
	if err := db.CreateActivity(context.Background(), ownerID, activity); err != nil {
		t.Fatalf("failed to seed activity %q: %v", title, err)
	}
	return activity
}

func seedMedication(t *testing.T, db *DB, ownerID string, petID int64, name string, start time.Time, active bool) *model.Medication {
	t.Helper()
	med := &model.Medication{
		PetID:     petID,
		Name:      name,
		Dosage:    "10mg",
		Frequency: "daily",
		StartDate: start,
		IsActive:  active,
	}
	if err := db.CreateMedication(context.Background(), ownerID, med); err != nil {
		t.Fatalf("failed to seed medication %q: %v", name, err)
	}
	return med
}

func seedReminder(t *testing.T, db *DB, ownerID, title string, due time.Time, petID *int64) *model.Reminder {
	t.Helper()
	reminder := &model.Reminder{
		UserID:       ownerID,
		PetID:        petID,
		Title:        title,
		Type:         model.ReminderAppointment,
		ReminderDate: due,
	}
	if err := db.CreateReminder(context.Background(), reminder); err != nil {
		t.Fatalf("failed to seed reminder %q: %v", title, err)
	}
	return reminder
}
