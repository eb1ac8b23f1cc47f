package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petwell/internal/apperror"
	"petwell/internal/model"
	"petwell/internal/repository"
)

// Reminder validation limits.
const (
	MaxReminderTitleLength       = 200
	MaxReminderDescriptionLength = 500
)

// ReminderService handles user-owned reminders. Reminders live directly
// under the user (not under a pet), so the optional pet link needs an
// explicit ownership cross-check here — the reminders table alone cannot
// express "this pet_id belongs to the same user".
type ReminderService struct {
	reminders repository.ReminderRepository
	pets      repository.PetRepository
	logger    *slog.Logger
}

func NewReminderService(
	reminders repository.ReminderRepository,
	pets repository.PetRepository,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		pets:      pets,
		logger:    logger,
	}
}

// ReminderInput is the create payload.
type ReminderInput struct {
	PetID        *int64
	Title        string
	Description  *string
	Type         string
	ReminderDate time.Time
}

// Create stores a new reminder for the owner. If the reminder references
// a pet, an ownership-scoped pet fetch confirms the link — a foreign pet
// ID fails with NotFound exactly as if the pet didn't exist.
func (s *ReminderService) Create(ctx context.Context, ownerID string, in ReminderInput) (*model.Reminder, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateReminderText(title, in.Description); err != nil {
		return nil, err
	}

	rtype, ok := model.ParseReminderType(in.Type)
	if !ok {
		return nil, apperror.ValidationFailed("reminderType", "unknown reminder type")
	}
	if in.ReminderDate.IsZero() {
		return nil, apperror.ValidationFailed("reminderDate", "reminder date is required")
	}

	if in.PetID != nil {
		if _, err := s.pets.GetPet(ctx, ownerID, *in.PetID); err != nil {
			return nil, err
		}
	}

	reminder := &model.Reminder{
		UserID:       ownerID,
		PetID:        in.PetID,
		Title:        title,
		Description:  derefOptional(in.Description),
		Type:         rtype,
		ReminderDate: in.ReminderDate,
	}

	if err := s.reminders.CreateReminder(ctx, reminder); err != nil {
		return nil, fmt.Errorf("creating reminder: %w", err)
	}

	s.logger.Info("reminder created",
		slog.Int64("reminderID", reminder.ID),
		slog.String("type", string(rtype)),
	)

	return reminder, nil
}

// Get returns one of the owner's reminders.
func (s *ReminderService) Get(ctx context.Context, ownerID string, id int64) (*model.Reminder, error) {
	return s.reminders.GetReminder(ctx, ownerID, id)
}

// List returns the owner's reminders, soonest due first. completed is a
// tri-state filter: nil returns everything.
func (s *ReminderService) List(ctx context.Context, ownerID string, completed *bool) ([]model.Reminder, error) {
	reminders, err := s.reminders.ListReminders(ctx, ownerID, repository.ReminderFilter{
		Completed: completed,
	})
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	return reminders, nil
}

// ReminderPatch is a partial update. ClearPetID detaches the reminder from
// its pet — needed because a nil PetID pointer already means "unchanged".
type ReminderPatch struct {
	PetID        *int64
	ClearPetID   bool
	Title        *string
	Description  *string
	Type         *string
	ReminderDate *time.Time
	IsCompleted  *bool
}

// Update applies a partial update, re-running the pet ownership
// cross-check when the pet link changes.
func (s *ReminderService) Update(ctx context.Context, ownerID string, id int64, patch ReminderPatch) (*model.Reminder, error) {
	reminder, err := s.reminders.GetReminder(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.ClearPetID {
		reminder.PetID = nil
	} else if patch.PetID != nil {
		if _, err := s.pets.GetPet(ctx, ownerID, *patch.PetID); err != nil {
			return nil, err
		}
		reminder.PetID = patch.PetID
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateReminderText(title, nil); err != nil {
			return nil, err
		}
		reminder.Title = title
	}
	if patch.Description != nil {
		if len(*patch.Description) > MaxReminderDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxReminderDescriptionLength))
		}
		reminder.Description = optionalText(*patch.Description)
	}
	if patch.Type != nil {
		rtype, ok := model.ParseReminderType(*patch.Type)
		if !ok {
			return nil, apperror.ValidationFailed("reminderType", "unknown reminder type")
		}
		reminder.Type = rtype
	}
	if patch.ReminderDate != nil {
		reminder.ReminderDate = *patch.ReminderDate
	}
	if patch.IsCompleted != nil {
		reminder.IsCompleted = *patch.IsCompleted
	}

	if err := s.reminders.UpdateReminder(ctx, ownerID, reminder); err != nil {
		return nil, fmt.Errorf("updating reminder: %w", err)
	}

	return reminder, nil
}

// Delete removes one of the owner's reminders.
func (s *ReminderService) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.reminders.DeleteReminder(ctx, ownerID, id)
}

func validateReminderText(title string, description *string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "reminder title is required")
	}
	if len(title) > MaxReminderTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxReminderTitleLength))
	}
	if description != nil && len(*description) > MaxReminderDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxReminderDescriptionLength))
	}
	return nil
}
