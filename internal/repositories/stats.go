package repositories

import (
	"bananaprep/internal/logger"
	"bananaprep/internal/models"
	"bananaprep/internal/services"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const statsCacheTTL = 5 * time.Minute

type StatsRepository interface {
	Get(ctx context.Context, userID int) (*models.StatsRecord, error)
	Create(ctx context.Context, userID int) error
	IncrementSolved(ctx context.Context, userID int, difficulty string) error
}

type statsRepository struct {
	db    *sqlx.DB
	cache services.Cache
}

func NewStatsRepository(db *sqlx.DB, cache services.Cache) StatsRepository {
	return &statsRepository{db: db, cache: cache}
}

func statsCacheKey(userID int) string {
	return fmt.Sprintf("user:%d:stats", userID)
}

// Get returns the user's solved counters. A user with no stats row yet gets
// zero counters rather than an error.
func (r *statsRepository) Get(ctx context.Context, userID int) (*models.StatsRecord, error) {
	var stats models.StatsRecord
	if err := r.cache.Get(ctx, statsCacheKey(userID), &stats); err == nil {
		return &stats, nil
	}

	query := `SELECT user_id, easy_solved, medium_solved, hard_solved, last_updated
              FROM user_stats WHERE user_id = ?`

	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return &models.StatsRecord{UserID: userID, LastUpdated: time.Now()}, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	_ = r.cache.Set(ctx, statsCacheKey(userID), stats, statsCacheTTL)

	return &stats, nil
}

func (r *statsRepository) Create(ctx context.Context, userID int) error {
	query := `INSERT INTO user_stats (user_id) VALUES (?)`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to create user stats: %w", err)
	}
	return nil
}

// IncrementSolved bumps the counter for the problem's difficulty. Callers
// guarantee exactly one call per genuine first solve; no deduplication
// happens here.
func (r *statsRepository) IncrementSolved(ctx context.Context, userID int, difficulty string) error {
	column := solvedColumn(difficulty)
	query := fmt.Sprintf(
		`UPDATE user_stats SET %s = %s + 1, last_updated = NOW() WHERE user_id = ?`,
		column, column)

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		logger.Log.Warn("No stats row to update, creating one")
		if err := r.Create(ctx, userID); err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to update user stats: %w", err)
		}
	}

	_ = r.cache.Delete(ctx, statsCacheKey(userID))

	return nil
}

// solvedColumn maps a difficulty to its counter column. The whitelist keeps
// the fmt.Sprintf above safe; unknown difficulties count as easy.
func solvedColumn(difficulty string) string {
	switch difficulty {
	case models.DifficultyMedium:
		return "medium_solved"
	case models.DifficultyHard:
		return "hard_solved"
	default:
		return "easy_solved"
	}
}
