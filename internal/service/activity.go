package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petwell/internal/ai"
	"petwell/internal/apperror"
	"petwell/internal/model"
	"petwell/internal/repository"
)

// ActivityService handles activity logging. Creation is description-first:
// the caller writes free text ("45 min walk around the lake, about 2
// miles") and the AI adapter derives the structured fields.
type ActivityService struct {
	activities repository.ActivityRepository
	pets       repository.PetRepository
	assistant  *ai.Assistant
	logger     *slog.Logger
}

func NewActivityService(
	activities repository.ActivityRepository,
	pets repository.PetRepository,
	assistant *ai.Assistant,
	logger *slog.Logger,
) *ActivityService {
	return &ActivityService{
		activities: activities,
		pets:       pets,
		assistant:  assistant,
		logger:     logger,
	}
}

// ActivityInput is the create payload: which pet, what happened, when.
type ActivityInput struct {
	PetID        int64
	Description  string
	ActivityDate *time.Time
}

// Create logs a new activity for one of the owner's pets.
//
// The ownership-scoped pet fetch serves three purposes at once: it rejects
// foreign pets with NotFound before any write, it gives the categorizer
// the pet's name and species for context, and it means the repository's
// own pet check never fires on this path.
//
// Categorization cannot fail the create — see Assistant.CategorizeActivity
// for the fallback contract.
func (s *ActivityService) Create(ctx context.Context, ownerID string, in ActivityInput) (*model.Activity, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "activity description is required")
	}

	pet, err := s.pets.GetPet(ctx, ownerID, in.PetID)
	if err != nil {
		return nil, err
	}

	cat := s.assistant.CategorizeActivity(ctx, pet, description)

	activity := &model.Activity{
		PetID:       pet.ID,
		Type:        cat.Type,
		Title:       cat.Title,
		Description: &description,
		Duration:    cat.Duration,
		Distance:    cat.Distance,
		Notes:       cat.Notes,
	}
	if in.ActivityDate != nil {
		activity.ActivityDate = *in.ActivityDate
	}

	if err := s.activities.CreateActivity(ctx, ownerID, activity); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	s.logger.Info("activity logged",
		slog.Int64("activityID", activity.ID),
		slog.Int64("petID", pet.ID),
		slog.String("type", string(activity.Type)),
	)

	return activity, nil
}

// Get returns one activity belonging to one of the owner's pets.
func (s *ActivityService) Get(ctx context.Context, ownerID string, id int64) (*model.Activity, error) {
	return s.activities.GetActivity(ctx, ownerID, id)
}

// List returns the owner's activities, newest first, optionally narrowed
// to one pet. petID of 0 means all pets.
func (s *ActivityService) List(ctx context.Context, ownerID string, petID int64, limit, offset int) ([]model.Activity, error) {
	activities, err := s.activities.ListActivities(ctx, ownerID, repository.ActivityFilter{
		ListOptions: clampList(limit, offset),
		PetID:       petID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

// ActivityPatch is a partial update. Unlike create, updates are manual:
// the user is correcting the record, so no AI re-categorization happens.
type ActivityPatch struct {
	Type         *string
	Title        *string
	Description  *string
	Duration     *int
	Distance     *float64
	Notes        *string
	ActivityDate *time.Time
}

// Update applies a partial update to one of the owner's activities.
func (s *ActivityService) Update(ctx context.Context, ownerID string, id int64, patch ActivityPatch) (*model.Activity, error) {
	activity, err := s.activities.GetActivity(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Type != nil {
		t, ok := model.ParseActivityType(*patch.Type)
		if !ok {
			return nil, apperror.ValidationFailed("activityType", "unknown activity type")
		}
		activity.Type = t
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "activity title cannot be empty")
		}
		activity.Title = title
	}
	if patch.Description != nil {
		activity.Description = optionalText(*patch.Description)
	}
	if patch.Duration != nil {
		if *patch.Duration < 0 {
			return nil, apperror.ValidationFailed("duration", "duration cannot be negative")
		}
		activity.Duration = patch.Duration
	}
	if patch.Distance != nil {
		if *patch.Distance < 0 {
			return nil, apperror.ValidationFailed("distance", "distance cannot be negative")
		}
		activity.Distance = patch.Distance
	}
	if patch.Notes != nil {
		activity.Notes = optionalText(*patch.Notes)
	}
	if patch.ActivityDate != nil {
		activity.ActivityDate = *patch.ActivityDate
	}

	if err := s.activities.UpdateActivity(ctx, ownerID, activity); err != nil {
		return nil, fmt.Errorf("updating activity: %w", err)
	}

	return activity, nil
}

// Delete removes one of the owner's activities.
func (s *ActivityService) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.activities.DeleteActivity(ctx, ownerID, id)
}

// InsightsReport is the response of the insights endpoint: activities
// grouped by type (always present) plus AI-spotted patterns (best-effort).
type InsightsReport struct {
	TotalActivities int                                     `json:"totalActivities"`
	ByType          map[model.ActivityType][]model.Activity `json:"activitiesByType"`
	Patterns        []string                                `json:"patterns"`
	Insights        string                                  `json:"insights"`
}

// Insights groups the owner's recent activities by type and asks the AI
// for routine patterns.
//
// The grouping half is deterministic and always returned; the AI half
// degrades to a placeholder on any provider problem. petID of 0 means all
// pets.
func (s *ActivityService) Insights(ctx context.Context, ownerID string, petID int64) (*InsightsReport, error) {
	activities, err := s.activities.ListActivities(ctx, ownerID, repository.ActivityFilter{
		ListOptions: repository.ListOptions{Limit: DefaultListLimit},
		PetID:       petID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing activities for insights: %w", err)
	}

	report := &InsightsReport{
		TotalActivities: len(activities),
		ByType:          make(map[model.ActivityType][]model.Activity),
		Patterns:        []string{},
	}
	for _, a := range activities {
		report.ByType[a.Type] = append(report.ByType[a.Type], a)
	}

	if len(activities) == 0 {
		report.Insights = "No activities logged yet."
		return report, nil
	}

	lines := make([]string, 0, len(activities))
	for _, a := range activities {
		line := fmt.Sprintf("- [%s] %s (%s)", a.Type, a.Title, a.ActivityDate.Format("2006-01-02 15:04"))
		if a.Duration != nil {
			line += fmt.Sprintf(", %d min", *a.Duration)
		}
		lines = append(lines, line)
	}

	insights, err := s.assistant.ActivityInsights(ctx, lines)
	if err != nil {
		report.Insights = "AI analysis not available"
		return report, nil
	}

	if insights.Patterns != nil {
		report.Patterns = insights.Patterns
	}
	report.Insights = insights.Insights
	return report, nil
}
