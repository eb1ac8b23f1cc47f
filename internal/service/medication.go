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

// Medication validation limits.
const (
	MaxMedicationNameLength = 200
	MaxDosageLength         = 100
	MaxFrequencyLength      = 100
	MaxRouteLength          = 50
)

// MedicationService handles prescription records. No AI involvement here:
// medication data is exactly what the user typed.
type MedicationService struct {
	medications repository.MedicationRepository
	logger      *slog.Logger
}

func NewMedicationService(medications repository.MedicationRepository, logger *slog.Logger) *MedicationService {
	return &MedicationService{
		medications: medications,
		logger:      logger,
	}
}

// MedicationInput is the create payload.
type MedicationInput struct {
	PetID          int64
	Name           string
	Dosage         string
	Frequency      string
	Route          *string
	Reason         *string
	PrescribingVet *string
	StartDate      *time.Time
	EndDate        *time.Time
	Notes          *string
}

// Create records a new medication for one of the owner's pets. The
// repository rejects foreign pets with NotFound.
func (s *MedicationService) Create(ctx context.Context, ownerID string, in MedicationInput) (*model.Medication, error) {
	med := &model.Medication{
		PetID:    in.PetID,
		IsActive: true,
	}

	med.Name = strings.TrimSpace(in.Name)
	if err := validateRequired("name", med.Name, MaxMedicationNameLength); err != nil {
		return nil, err
	}
	med.Dosage = strings.TrimSpace(in.Dosage)
	if err := validateRequired("dosage", med.Dosage, MaxDosageLength); err != nil {
		return nil, err
	}
	med.Frequency = strings.TrimSpace(in.Frequency)
	if err := validateRequired("frequency", med.Frequency, MaxFrequencyLength); err != nil {
		return nil, err
	}
	if in.Route != nil {
		if len(*in.Route) > MaxRouteLength {
			return nil, apperror.ValidationFailed("route",
				fmt.Sprintf("route must be %d characters or less", MaxRouteLength))
		}
		med.Route = optionalText(*in.Route)
	}
	med.Reason = derefOptional(in.Reason)
	med.PrescribingVet = derefOptional(in.PrescribingVet)
	med.Notes = derefOptional(in.Notes)
	if in.StartDate != nil {
		med.StartDate = *in.StartDate
	}
	med.EndDate = in.EndDate

	if err := s.medications.CreateMedication(ctx, ownerID, med); err != nil {
		return nil, fmt.Errorf("creating medication: %w", err)
	}

	s.logger.Info("medication recorded",
		slog.Int64("medicationID", med.ID),
		slog.Int64("petID", med.PetID),
		slog.String("name", med.Name),
	)

	return med, nil
}

// Get returns one medication belonging to one of the owner's pets.
func (s *MedicationService) Get(ctx context.Context, ownerID string, id int64) (*model.Medication, error) {
	return s.medications.GetMedication(ctx, ownerID, id)
}

// List returns the owner's medications, most recently started first.
// petID of 0 means all pets; activeOnly drops discontinued entries.
func (s *MedicationService) List(ctx context.Context, ownerID string, petID int64, activeOnly bool, limit, offset int) ([]model.Medication, error) {
	meds, err := s.medications.ListMedications(ctx, ownerID, repository.MedicationFilter{
		ListOptions: clampList(limit, offset),
		PetID:       petID,
		ActiveOnly:  activeOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	return meds, nil
}

// MedicationPatch is a partial update. IsActive is how a course of
// medication is discontinued without losing its history.
type MedicationPatch struct {
	Name           *string
	Dosage         *string
	Frequency      *string
	Route          *string
	Reason         *string
	PrescribingVet *string
	StartDate      *time.Time
	EndDate        *time.Time
	IsActive       *bool
	Notes          *string
}

// Update applies a partial update to one of the owner's medications.
func (s *MedicationService) Update(ctx context.Context, ownerID string, id int64, patch MedicationPatch) (*model.Medication, error) {
	med, err := s.medications.GetMedication(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateRequired("name", name, MaxMedicationNameLength); err != nil {
			return nil, err
		}
		med.Name = name
	}
	if patch.Dosage != nil {
		dosage := strings.TrimSpace(*patch.Dosage)
		if err := validateRequired("dosage", dosage, MaxDosageLength); err != nil {
			return nil, err
		}
		med.Dosage = dosage
	}
	if patch.Frequency != nil {
		frequency := strings.TrimSpace(*patch.Frequency)
		if err := validateRequired("frequency", frequency, MaxFrequencyLength); err != nil {
			return nil, err
		}
		med.Frequency = frequency
	}
	if patch.Route != nil {
		if len(*patch.Route) > MaxRouteLength {
			return nil, apperror.ValidationFailed("route",
				fmt.Sprintf("route must be %d characters or less", MaxRouteLength))
		}
		med.Route = optionalText(*patch.Route)
	}
	if patch.Reason != nil {
		med.Reason = optionalText(*patch.Reason)
	}
	if patch.PrescribingVet != nil {
		med.PrescribingVet = optionalText(*patch.PrescribingVet)
	}
	if patch.StartDate != nil {
		med.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		med.EndDate = patch.EndDate
	}
	if patch.IsActive != nil {
		med.IsActive = *patch.IsActive
	}
	if patch.Notes != nil {
		med.Notes = optionalText(*patch.Notes)
	}

	if err := s.medications.UpdateMedication(ctx, ownerID, med); err != nil {
		return nil, fmt.Errorf("updating medication: %w", err)
	}

	return med, nil
}

// Delete removes one of the owner's medications.
func (s *MedicationService) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.medications.DeleteMedication(ctx, ownerID, id)
}

// validateRequired enforces "non-empty, at most max characters" for the
// required short-text fields.
func validateRequired(field, value string, max int) error {
	if value == "" {
		return apperror.ValidationFailed(field, field+" is required")
	}
	if len(value) > max {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", field, max))
	}
	return nil
}

// derefOptional converts an optional request field to a stored optional:
// nil stays nil, blank collapses to nil.
func derefOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return optionalText(*s)
}
