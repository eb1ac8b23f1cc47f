package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"petwell/internal/apperror"
	"petwell/internal/model"
	"petwell/internal/repository"
)

var _ repository.PetRepository = (*DB)(nil)

const petColumns = `id, user_id, name, species, breed, secondary_breed, tertiary_breed,
	breed_type, sex, birthday, age, weight, medical_notes, ai_care_tips, created_at, updated_at`

// CreatePet inserts a pet for its owner. The ID comes back from SQLite's
// AUTOINCREMENT — stable, monotonic, server-assigned.
func (db *DB) CreatePet(ctx context.Context, pet *model.Pet) error {
	now := time.Now()
	pet.CreatedAt = now
	pet.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO pets (user_id, name, species, breed, secondary_breed, tertiary_breed,
			breed_type, sex, birthday, age, weight, medical_notes, ai_care_tips, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pet.UserID,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.SecondaryBreed,
		pet.TertiaryBreed,
		pet.BreedType,
		pet.Sex,
		pet.Birthday,
		pet.Age,
		pet.Weight,
		pet.MedicalNotes,
		pet.AICareTips,
		pet.CreatedAt,
		pet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting pet %q: %w", pet.Name, err)
	}

	pet.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading pet insert id: %w", err)
	}

	return nil
}

// GetPet retrieves one pet, scoped to its owner. A pet that exists but
// belongs to someone else and a pet that doesn't exist produce the same
// ErrNotFound.
func (db *DB) GetPet(ctx context.Context, ownerID string, id int64) (*model.Pet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+petColumns+` FROM pets WHERE id = ? AND user_id = ?`,
		id, ownerID)

	pet, err := scanPet(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("pet")
		}
		return nil, fmt.Errorf("sqlite: getting pet %d: %w", id, err)
	}

	return pet, nil
}

func (db *DB) ListPets(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Pet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+petColumns+` FROM pets WHERE user_id = ?
		 ORDER BY id LIMIT ? OFFSET ?`,
		ownerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pets: %w", err)
	}
	defer rows.Close()

	pets := []model.Pet{}
	for rows.Next() {
		pet, err := scanPet(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning pet row: %w", err)
		}
		pets = append(pets, *pet)
	}

	return pets, rows.Err()
}

// UpdatePet persists a modified pet. The WHERE clause repeats the
// ownership predicate even though the service fetched through GetPet —
// every write path carries its own scope.
func (db *DB) UpdatePet(ctx context.Context, ownerID string, pet *model.Pet) error {
	pet.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE pets SET name = ?, species = ?, breed = ?, secondary_breed = ?,
			tertiary_breed = ?, breed_type = ?, sex = ?, birthday = ?, age = ?,
			weight = ?, medical_notes = ?, ai_care_tips = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.SecondaryBreed,
		pet.TertiaryBreed,
		pet.BreedType,
		pet.Sex,
		pet.Birthday,
		pet.Age,
		pet.Weight,
		pet.MedicalNotes,
		pet.AICareTips,
		pet.UpdatedAt,
		pet.ID,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating pet %d: %w", pet.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating pet %d: %w", pet.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("pet")
	}

	return nil
}

// DeletePet removes a pet. The foreign keys declared in migrate() cascade
// the delete to the pet's activities, medications, and reminders.
func (db *DB) DeletePet(ctx context.Context, ownerID string, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM pets WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting pet %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting pet %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("pet")
	}

	return nil
}

// scanPet reads one pet row. Taking the Scan func (rather than *sql.Row or
// *sql.Rows) lets the same helper serve both single-row and multi-row
// queries.
func scanPet(scan func(...any) error) (*model.Pet, error) {
	var (
		p         model.Pet
		breedType sql.NullString
		sex       sql.NullString
	)

	err := scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.SecondaryBreed,
		&p.TertiaryBreed,
		&breedType,
		&sex,
		&p.Birthday,
		&p.Age,
		&p.Weight,
		&p.MedicalNotes,
		&p.AICareTips,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if breedType.Valid {
		bt := model.BreedType(breedType.String)
		p.BreedType = &bt
	}
	if sex.Valid {
		sx := model.Sex(sex.String)
		p.Sex = &sx
	}

	return &p, nil
}
