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

var _ repository.ActivityRepository = (*DB)(nil)

const activityColumns = `id, pet_id, activity_type, title, description, duration,
	distance, notes, activity_date, created_at, updated_at`

// ownsPet is the transitive-scoping helper for the pet-child entities.
// Activities and medications carry no user_id column; their owner is
// whoever owns the pet.
func (db *DB) ownsPet(ctx context.Context, ownerID string, petID int64) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM pets WHERE id = ? AND user_id = ?`, petID, ownerID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking pet ownership: %w", err)
	}
	return true, nil
}

func (db *DB) CreateActivity(ctx context.Context, ownerID string, activity *model.Activity) error {
	owned, err := db.ownsPet(ctx, ownerID, activity.PetID)
	if err != nil {
		return err
	}
	if !owned {
		return apperror.NotFound("pet")
	}

	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now
	if activity.ActivityDate.IsZero() {
		activity.ActivityDate = now
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO activities (pet_id, activity_type, title, description, duration,
			distance, notes, activity_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.PetID,
		activity.Type,
		activity.Title,
		activity.Description,
		activity.Duration,
		activity.Distance,
		activity.Notes,
		activity.ActivityDate,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting activity %q: %w", activity.Title, err)
	}

	activity.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading activity insert id: %w", err)
	}

	return nil
}

// GetActivity scopes through pet ownership: the subquery restricts the
// match to pets owned by the caller, so someone else's activity is
// indistinguishable from a missing one.
func (db *DB) GetActivity(ctx context.Context, ownerID string, id int64) (*model.Activity, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities
		 WHERE id = ? AND pet_id IN (SELECT id FROM pets WHERE user_id = ?)`,
		id, ownerID)

	activity, err := scanActivity(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("activity")
		}
		return nil, fmt.Errorf("sqlite: getting activity %d: %w", id, err)
	}

	return activity, nil
}

// ListActivities returns the caller's activities newest first, optionally
// narrowed to one pet. Filtering by a pet the caller doesn't own yields an
// empty list by construction — the subquery already excluded it.
func (db *DB) ListActivities(ctx context.Context, ownerID string, f repository.ActivityFilter) ([]model.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		 WHERE pet_id IN (SELECT id FROM pets WHERE user_id = ?)`
	args := []any{ownerID}

	if f.PetID != 0 {
		query += ` AND pet_id = ?`
		args = append(args, f.PetID)
	}

	query += ` ORDER BY activity_date DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activities: %w", err)
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		activity, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		activities = append(activities, *activity)
	}

	return activities, rows.Err()
}

func (db *DB) UpdateActivity(ctx context.Context, ownerID string, activity *model.Activity) error {
	activity.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE activities SET activity_type = ?, title = ?, description = ?,
			duration = ?, distance = ?, notes = ?, activity_date = ?, updated_at = ?
		 WHERE id = ? AND pet_id IN (SELECT id FROM pets WHERE user_id = ?)`,
		activity.Type,
		activity.Title,
		activity.Description,
		activity.Duration,
		activity.Distance,
		activity.Notes,
		activity.ActivityDate,
		activity.UpdatedAt,
		activity.ID,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating activity %d: %w", activity.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating activity %d: %w", activity.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("activity")
	}

	return nil
}

func (db *DB) DeleteActivity(ctx context.Context, ownerID string, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM activities
		 WHERE id = ? AND pet_id IN (SELECT id FROM pets WHERE user_id = ?)`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting activity %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting activity %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("activity")
	}

	return nil
}

func scanActivity(scan func(...any) error) (*model.Activity, error) {
	var a model.Activity

	err := scan(
		&a.ID,
		&a.PetID,
		&a.Type,
		&a.Title,
		&a.Description,
		&a.Duration,
		&a.Distance,
		&a.Notes,
		&a.ActivityDate,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}
