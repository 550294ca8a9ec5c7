package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/timetable/internal/models"
)

// entryColumns whitelists the columns a sparse schedule patch may touch.
var entryColumns = map[string]string{
	"day":       "day",
	"from_time": "from_time",
	"to_time":   "to_time",
	"period":    "period",
	"subject":   "subject",
	"branch":    "branch",
	"section":   "section",
}

const entrySelect = `id, username, day, from_time, to_time, period, subject, branch, section, instructor, created_at`

// ScheduleRepo persists weekly schedule entries.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, e *models.Entry) error {
	return row.Scan(&e.ID, &e.Username, &e.Day, &e.FromTime, &e.ToTime, &e.Period,
		&e.Subject, &e.Branch, &e.Section, &e.Instructor, &e.CreatedAt)
}

// PeriodTaken reports whether username already has an entry for period.
func (r *ScheduleRepo) PeriodTaken(ctx context.Context, username string, period int) (bool, error) {
	var taken bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM schedule WHERE username = $1 AND period = $2)`,
		username, period,
	).Scan(&taken)
	return taken, err
}

// Create inserts one entry stamped with instructor. If (username, period) is already
// present the insert is skipped and ErrDuplicate is returned, so a concurrent create
// that passed PeriodTaken cannot produce a second row.
func (r *ScheduleRepo) Create(ctx context.Context, username, instructor string, in models.NewEntry) (*models.Entry, error) {
	query := `
		INSERT INTO schedule (username, day, from_time, to_time, period, subject, branch, section, instructor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (username, period) DO NOTHING
		RETURNING ` + entrySelect

	e := &models.Entry{}
	err := scanEntry(r.DB.QueryRowContext(ctx, query,
		username, in.Day, in.FromTime, in.ToTime, in.Period, in.Subject, in.Branch, in.Section, instructor,
	), e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByUsername returns every entry owned by username, ordered by period.
func (r *ScheduleRepo) ListByUsername(ctx context.Context, username string) ([]models.Entry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+entrySelect+` FROM schedule WHERE username = $1 ORDER BY period ASC`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := scanEntry(rows, &e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// UpdateField sets one whitelisted column on every entry owned by username.
// Moving several entries onto the same period violates the unique constraint and yields ErrDuplicate.
func (r *ScheduleRepo) UpdateField(ctx context.Context, username, field string, value any) (int64, error) {
	col, ok := entryColumns[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, field)
	}

	result, err := r.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE schedule SET %s = $1 WHERE username = $2`, col),
		value, username,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return result.RowsAffected()
}

// SyncInstructor copies a new display name onto the denormalized instructor column.
func (r *ScheduleRepo) SyncInstructor(ctx context.Context, username, instructor string) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE schedule SET instructor = $1 WHERE username = $2`,
		instructor, username,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
