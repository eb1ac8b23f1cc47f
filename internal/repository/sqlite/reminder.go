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

var _ repository.ReminderRepository = (*DB)(nil)

const reminderColumns = `id, user_id, pet_id, title, description, reminder_type,
	reminder_date, is_completed, created_at`

// CreateReminder inserts a reminder. Reminders are owned directly through
// user_id; the pet_id cross-ownership check (when set) happens in the
// service before this is called.
func (db *DB) CreateReminder(ctx context.Context, reminder *model.Reminder) error {
	reminder.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO reminders (user_id, pet_id, title, description, reminder_type,
			reminder_date, is_completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.UserID,
		reminder.PetID,
		reminder.Title,
		reminder.Description,
		reminder.Type,
		reminder.ReminderDate,
		reminder.IsCompleted,
		reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting reminder %q: %w", reminder.Title, err)
	}

	reminder.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading reminder insert id: %w", err)
	}

	return nil
}

func (db *DB) GetReminder(ctx context.Context, ownerID string, id int64) (*model.Reminder, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND user_id = ?`,
		id, ownerID)

	reminder, err := scanReminder(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("reminder")
		}
		return nil, fmt.Errorf("sqlite: getting reminder %d: %w", id, err)
	}

	return reminder, nil
}

// ListReminders returns soonest due first. Completed is tri-state: nil
// lists everything, otherwise it filters on is_completed.
func (db *DB) ListReminders(ctx context.Context, ownerID string, f repository.ReminderFilter) ([]model.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = ?`
	args := []any{ownerID}

	if f.Completed != nil {
		query += ` AND is_completed = ?`
		args = append(args, *f.Completed)
	}

	query += ` ORDER BY reminder_date ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reminders: %w", err)
	}
	defer rows.Close()

	reminders := []model.Reminder{}
	for rows.Next() {
		reminder, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning reminder row: %w", err)
		}
		reminders = append(reminders, *reminder)
	}

	return reminders, rows.Err()
}

func (db *DB) UpdateReminder(ctx context.Context, ownerID string, reminder *model.Reminder) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE reminders SET pet_id = ?, title = ?, description = ?,
			reminder_type = ?, reminder_date = ?, is_completed = ?
		 WHERE id = ? AND user_id = ?`,
		reminder.PetID,
		reminder.Title,
		reminder.Description,
		reminder.Type,
		reminder.ReminderDate,
		reminder.IsCompleted,
		reminder.ID,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating reminder %d: %w", reminder.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating reminder %d: %w", reminder.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("reminder")
	}

	return nil
}

func (db *DB) DeleteReminder(ctx context.Context, ownerID string, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting reminder %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting reminder %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("reminder")
	}

	return nil
}

func scanReminder(scan func(...any) error) (*model.Reminder, error) {
	var r model.Reminder

	err := scan(
		&r.ID,
		&r.UserID,
		&r.PetID,
		&r.Title,
		&r.Description,
		&r.Type,
		&r.ReminderDate,
		&r.IsCompleted,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}
