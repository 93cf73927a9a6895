package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordmemo/pkg/models"
)

// StatisticsRepository keeps per-day review counters
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// RecordReview adds one graded card to the counters of day
func (r *StatisticsRepository) RecordReview(ctx context.Context, day string, knew bool) error {
	k, f := 0, 1
	if knew {
		k, f = 1, 0
	}
	query := r.db.Rebind(`
		INSERT INTO daily_reviews (day, knew, forgot)
		VALUES (?, ?, ?)
		ON CONFLICT (day) DO UPDATE SET
			knew = daily_reviews.knew + excluded.knew,
			forgot = daily_reviews.forgot + excluded.forgot
	`)
	if _, err := r.db.ExecContext(ctx, query, day, k, f); err != nil {
		return errors.Wrapf(err, "failed to record review for %s", day)
	}
	return nil
}

// GetDay returns the counters of day, zero when nothing was reviewed
func (r *StatisticsRepository) GetDay(ctx context.Context, day string) (models.DailyStatistics, error) {
	stats := models.DailyStatistics{Day: day}
	query := r.db.Rebind(`SELECT day, knew, forgot FROM daily_reviews WHERE day = ?`)
	var rows []models.DailyStatistics
	if err := r.db.SelectContext(ctx, &rows, query, day); err != nil {
		return stats, errors.Wrapf(err, "failed to get statistics for %s", day)
	}
	if len(rows) > 0 {
		stats = rows[0]
	}
	return stats, nil
}

// Recent returns up to limit days, newest first
func (r *StatisticsRepository) Recent(ctx context.Context, limit int) ([]models.DailyStatistics, error) {
	query := r.db.Rebind(`
		SELECT day, knew, forgot
		FROM daily_reviews
		ORDER BY day DESC
		LIMIT ?
	`)
	var stats []models.DailyStatistics
	if err := r.db.SelectContext(ctx, &stats, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to get recent statistics")
	}
	return stats, nil
}
