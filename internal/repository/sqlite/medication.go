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

var _ repository.MedicationRepository = (*DB)(nil)

const medicationColumns = `id, pet_id, name, dosage, frequency, route, reason,
	prescribing_vet, start_date, end_date, is_active, notes, created_at, updated_at`

func (db *DB) CreateMedication(ctx context.Context, ownerID string, med *model.Medication) error {
	owned, err := db.ownsPet(ctx, ownerID, med.PetID)
	if err != nil {
		return err
	}
	if !owned {
		return apperror.NotFound("pet")
	}

	now := time.Now()
	med.CreatedAt = now
	med.UpdatedAt = now
	if med.StartDate.IsZero() {
		med.StartDate = now
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO medications (pet_id, name, dosage, frequency, route, reason,
			prescribing_vet, start_date, end_date, is_active, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		med.PetID,
		med.Name,
		med.Dosage,
		med.Frequency,
		med.Route,
		med.Reason,
		med.PrescribingVet,
		med.StartDate,
		med.EndDate,
		med.IsActive,
		med.Notes,
		med.CreatedAt,
		med.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting medication %q: %w", med.Name, err)
	}

	med.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading medication insert id: %w", err)
	}

	return nil
}

func (db *DB) GetMedication(ctx context.Context, ownerID string, id int64) (*model.Medication, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+medicationColumns+` FROM medications
		 WHERE id = ? AND pet_id IN (SELECT id FROM pets WHERE user_id = ?)`,
		id, ownerID)

	med, err := scanMedication(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("medication")
		}
		return nil, fmt.Errorf("sqlite: getting medication %d: %w", id, err)
	}

	return med, nil
}

// ListMedications returns most recently started first; ActiveOnly drops
// medications whose course has been marked finished.
func (db *DB) ListMedications(ctx context.Context, ownerID string, f repository.MedicationFilter) ([]model.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications
		 WHERE pet_id IN (SELECT id FROM pets WHERE user_id = ?)`
	args := []any{ownerID}

	if f.PetID != 0 {
		query += ` AND pet_id = ?`
		args = append(args, f.PetID)
	}
	if f.ActiveOnly {
		query += ` AND is_active = 1`
	}

	query += ` ORDER BY start_date DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing medications: %w", err)
	}
	defer rows.Close()

	meds := []model.Medication{}
	for rows.Next() {
		med, err := scanMedication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning medication row: %w", err)
		}
		meds = append(meds, *med)
	}

	return meds, rows.Err()
}

func (db *DB) UpdateMedication(ctx context.Context, ownerID string, med *model.Medication) error {
	med.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE medications SET name = ?, dosage = ?, frequency = ?, route = ?,
			reason = ?, prescribing_vet = ?, start_date = ?, end_date = ?,
			is_active = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND pet_id IN (SELECT id FROM pets WHERE user_id = ?)`,
		med.Name,
		med.Dosage,
		med.Frequency,
		med.Route,
		med.Reason,
		med.PrescribingVet,
		med.StartDate,
		med.EndDate,
		med.IsActive,
		med.Notes,
		med.UpdatedAt,
		med.ID,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating medication %d: %w", med.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating medication %d: %w", med.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("medication")
	}

	return nil
}

func (db *DB) DeleteMedication(ctx context.Context, ownerID string, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM medications
		 WHERE id = ? AND pet_id IN (SELECT id FROM pets WHERE user_id = ?)`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting medication %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting medication %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("medication")
	}

	return nil
}

func scanMedication(scan func(...any) error) (*model.Medication, error) {
	var m model.Medication

	err := scan(
		&m.ID,
		&m.PetID,
		&m.Name,
		&m.Dosage,
		&m.Frequency,
		&m.Route,
		&m.Reason,
		&m.PrescribingVet,
		&m.StartDate,
		&m.EndDate,
		&m.IsActive,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
