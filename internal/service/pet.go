package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petwell/internal/ai"
	"petwell/internal/apperror"
	"petwell/internal/model"
	"petwell/internal/repository"
)

// Validation limits. The ranges are generous sanity bounds, not breed
// charts — a 45-year-old parrot is real, a 600lb house pet is a typo.
const (
	MaxPetNameLength = 100
	MaxPetAge        = 50
	MaxPetWeight     = 500.0

	DefaultListLimit = 100
	MaxListLimit     = 500
)

// PetService handles business logic for pet profiles, including the AI
// care-tips enrichment on create.
type PetService struct {
	pets      repository.PetRepository
	assistant *ai.Assistant
	logger    *slog.Logger
}

func NewPetService(pets repository.PetRepository, assistant *ai.Assistant, logger *slog.Logger) *PetService {
	return &PetService{
		pets:      pets,
		assistant: assistant,
		logger:    logger,
	}
}

// PetInput carries the writable pet fields. Enum-valued fields arrive as
// raw strings (straight from JSON) and are parsed here, so the handlers
// never need to know the allowed values.
type PetInput struct {
	Name           string
	Species        string
	Breed          *string
	SecondaryBreed *string
	TertiaryBreed  *string
	BreedType      *string
	Sex            *string
	Birthday       *time.Time
	Age            *int
	Weight         *float64
	MedicalNotes   *string
}

// Create validates and stores a new pet for the owner, then enriches it
// with AI care tips.
//
// ENRICHMENT IS BEST-EFFORT:
// The AI call happens between validation and a second persistence step and
// can never fail the create. With no provider configured the tips are
// simply absent; with a failing provider the stored tips are the fallback
// string the frontend knows to render as "tips unavailable".
func (s *PetService) Create(ctx context.Context, ownerID string, in PetInput) (*model.Pet, error) {
	pet := &model.Pet{UserID: ownerID}
	if err := applyPetInput(pet, in); err != nil {
		return nil, err
	}

	if err := s.pets.CreatePet(ctx, pet); err != nil {
		return nil, fmt.Errorf("creating pet: %w", err)
	}

	s.logger.Info("pet created",
		slog.Int64("petID", pet.ID),
		slog.String("ownerID", ownerID),
		slog.String("species", string(pet.Species)),
	)

	// No transaction is held across the AI round-trip: the pet row is
	// committed above, the tips land in a second, separate write.
	if s.assistant.Enabled() {
		tips := s.assistant.CareTips(ctx, pet)
		pet.AICareTips = &tips
		if err := s.pets.UpdatePet(ctx, ownerID, pet); err != nil {
			s.logger.Warn("storing care tips failed",
				slog.Int64("petID", pet.ID),
				slog.String("error", err.Error()),
			)
			pet.AICareTips = nil
		}
	}

	return pet, nil
}

// Get returns one of the owner's pets.
func (s *PetService) Get(ctx context.Context, ownerID string, id int64) (*model.Pet, error) {
	return s.pets.GetPet(ctx, ownerID, id)
}

// List returns the owner's pets with pagination clamped to sane bounds.
func (s *PetService) List(ctx context.Context, ownerID string, limit, offset int) ([]model.Pet, error) {
	pets, err := s.pets.ListPets(ctx, ownerID, clampList(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("listing pets: %w", err)
	}
	return pets, nil
}

// PetPatch is a partial update: nil means "leave unchanged". A non-nil
// pointer to an empty string clears an optional text field.
type PetPatch struct {
	Name           *string
	Species        *string
	Breed          *string
	SecondaryBreed *string
	TertiaryBreed  *string
	BreedType      *string
	Sex            *string
	Birthday       *time.Time
	Age            *int
	Weight         *float64
	MedicalNotes   *string
}

// Update applies a partial update to one of the owner's pets.
// Fetch-then-update: the ownership-scoped Get doubles as the existence
// check, so a foreign pet ID fails here with NotFound before any write.
func (s *PetService) Update(ctx context.Context, ownerID string, id int64, patch PetPatch) (*model.Pet, error) {
	pet, err := s.pets.GetPet(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validatePetName(name); err != nil {
			return nil, err
		}
		pet.Name = name
	}
	if patch.Species != nil {
		species, ok := model.ParseSpecies(*patch.Species)
		if !ok {
			return nil, apperror.ValidationFailed("species", "unknown species")
		}
		pet.Species = species
	}
	if patch.Breed != nil {
		pet.Breed = optionalText(*patch.Breed)
	}
	if patch.SecondaryBreed != nil {
		pet.SecondaryBreed = optionalText(*patch.SecondaryBreed)
	}
	if patch.TertiaryBreed != nil {
		pet.TertiaryBreed = optionalText(*patch.TertiaryBreed)
	}
	if patch.BreedType != nil {
		bt, ok := model.ParseBreedType(*patch.BreedType)
		if !ok {
			return nil, apperror.ValidationFailed("breedType", "breed type must be purebred or mix")
		}
		pet.BreedType = &bt
	}
	if patch.Sex != nil {
		sex, ok := model.ParseSex(*patch.Sex)
		if !ok {
			return nil, apperror.ValidationFailed("sex", "sex must be male, female or unknown")
		}
		pet.Sex = &sex
	}
	if patch.Birthday != nil {
		pet.Birthday = patch.Birthday
	}
	if patch.Age != nil {
		if err := validatePetAge(*patch.Age); err != nil {
			return nil, err
		}
		pet.Age = patch.Age
	}
	if patch.Weight != nil {
		if err := validatePetWeight(*patch.Weight); err != nil {
			return nil, err
		}
		pet.Weight = patch.Weight
	}
	if patch.MedicalNotes != nil {
		pet.MedicalNotes = optionalText(*patch.MedicalNotes)
	}

	if err := s.pets.UpdatePet(ctx, ownerID, pet); err != nil {
		return nil, fmt.Errorf("updating pet: %w", err)
	}

	s.logger.Info("pet updated", slog.Int64("petID", pet.ID))
	return pet, nil
}

// Delete removes one of the owner's pets. The database cascades the
// delete to the pet's activities, medications and reminders.
func (s *PetService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.pets.DeletePet(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("pet deleted", slog.Int64("petID", id), slog.String("ownerID", ownerID))
	return nil
}

// RegenerateTips replaces the pet's stored care tips with a fresh,
// medical-notes-aware generation.
//
// Unlike the enrichment on create, this endpoint EXISTS to call the AI —
// so here an absent or failing provider becomes apperror.AIUnavailable
// (503) instead of a silent fallback.
func (s *PetService) RegenerateTips(ctx context.Context, ownerID string, id int64) (*model.Pet, error) {
	pet, err := s.pets.GetPet(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	tips, err := s.assistant.RegenerateCareTips(ctx, pet)
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			s.logger.Error("regenerating care tips failed",
				slog.Int64("petID", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.AIUnavailable()
	}

	pet.AICareTips = &tips
	if err := s.pets.UpdatePet(ctx, ownerID, pet); err != nil {
		return nil, fmt.Errorf("storing regenerated tips: %w", err)
	}

	s.logger.Info("care tips regenerated", slog.Int64("petID", id))
	return pet, nil
}

// applyPetInput validates a full PetInput and writes it onto the pet.
// Shared by Create; Update goes field-by-field through PetPatch instead.
func applyPetInput(pet *model.Pet, in PetInput) error {
	name := strings.TrimSpace(in.Name)
	if err := validatePetName(name); err != nil {
		return err
	}
	species, ok := model.ParseSpecies(in.Species)
	if !ok {
		return apperror.ValidationFailed("species", "unknown species")
	}

	pet.Name = name
	pet.Species = species
	if in.Breed != nil {
		pet.Breed = optionalText(*in.Breed)
	}
	if in.SecondaryBreed != nil {
		pet.SecondaryBreed = optionalText(*in.SecondaryBreed)
	}
	if in.TertiaryBreed != nil {
		pet.TertiaryBreed = optionalText(*in.TertiaryBreed)
	}
	if in.BreedType != nil {
		bt, ok := model.ParseBreedType(*in.BreedType)
		if !ok {
			return apperror.ValidationFailed("breedType", "breed type must be purebred or mix")
		}
		pet.BreedType = &bt
	}
	if in.Sex != nil {
		sex, ok := model.ParseSex(*in.Sex)
		if !ok {
			return apperror.ValidationFailed("sex", "sex must be male, female or unknown")
		}
		pet.Sex = &sex
	}
	pet.Birthday = in.Birthday
	if in.Age != nil {
		if err := validatePetAge(*in.Age); err != nil {
			return err
		}
		pet.Age = in.Age
	}
	if in.Weight != nil {
		if err := validatePetWeight(*in.Weight); err != nil {
			return err
		}
		pet.Weight = in.Weight
	}
	if in.MedicalNotes != nil {
		pet.MedicalNotes = optionalText(*in.MedicalNotes)
	}

	return nil
}

func validatePetName(name string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "pet name is required")
	}
	if len(name) > MaxPetNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("pet name must be %d characters or less", MaxPetNameLength))
	}
	return nil
}

func validatePetAge(age int) error {
	if age < 0 || age > MaxPetAge {
		return apperror.ValidationFailed("age",
			fmt.Sprintf("age must be between 0 and %d years", MaxPetAge))
	}
	return nil
}

func validatePetWeight(weight float64) error {
	if weight <= 0 || weight > MaxPetWeight {
		return apperror.ValidationFailed("weight",
			fmt.Sprintf("weight must be greater than 0 and at most %.0f lbs", MaxPetWeight))
	}
	return nil
}

// optionalText maps a trimmed string to nil when empty, so cleared
// optional fields are stored as NULL rather than "".
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// clampList normalises pagination parameters.
func clampList(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
