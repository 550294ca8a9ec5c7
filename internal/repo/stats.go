package repo

import (
	"context"
	"database/sql"
)

// StatsRepo reads table sizes for the metrics gauges.
type StatsRepo struct {
	DB *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{DB: db}
}

// Totals returns the number of users and of schedule entries.
func (r *StatsRepo) Totals(ctx context.Context) (users, entries int64, err error) {
	err = r.DB.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM schedule)
	`).Scan(&users, &entries)
	return users, entries, err
}
