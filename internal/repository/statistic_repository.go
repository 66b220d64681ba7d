package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/anonq-bot/internal/model"
)

// StatisticRepository handles the statistics counters.
type StatisticRepository struct {
	db DBTX
}

// NewStatisticRepository creates a new StatisticRepository.
func NewStatisticRepository(db DBTX) *StatisticRepository {
	return &StatisticRepository{db: db}
}

// Ensure creates the counter with an initial value if it does not exist yet.
func (r *StatisticRepository) Ensure(ctx context.Context, name, initial string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO statistics (name, value) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`, name, initial)
	return err
}

// Increment parses the stored value, adds one and writes it back.
// The row lock only protects against lost updates when called inside InTx.
func (r *StatisticRepository) Increment(ctx context.Context, name string) (int64, error) {
	var raw string
	err := r.db.QueryRow(ctx,
		`SELECT value FROM statistics WHERE name = $1 FOR UPDATE`, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("statistic %q: %w", name, ErrNotFound)
		}
		return 0, err
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("statistic %q holds non-integer %q: %w", name, raw, err)
	}
	n++

	_, err = r.db.Exec(ctx,
		`UPDATE statistics SET value = $1, updated_at = NOW() WHERE name = $2`,
		strconv.FormatInt(n, 10), name)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// List returns every counter ordered by name.
func (r *StatisticRepository) List(ctx context.Context) ([]model.Statistic, error) {
	rows, err := r.db.Query(ctx, `SELECT name, value, updated_at FROM statistics ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []model.Statistic
	for rows.Next() {
		var s model.Statistic
		if err := rows.Scan(&s.Name, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
