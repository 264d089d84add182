package repositories

import (
	"bananaprep/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrProgressNotFound = errors.New("no progress found for this problem")

// AttemptOutcome reports what RecordAttempt actually persisted.
// FirstSolve is true only on a genuine transition into solved, which is the
// one moment the stats counters may be incremented.
type AttemptOutcome struct {
	Status     string
	Attempts   int
	FirstSolve bool
}

type ProgressRepository interface {
	Get(ctx context.Context, userID, problemID int) (*models.ProgressRecord, error)
	GetAll(ctx context.Context, userID int) ([]models.ProgressRecord, error)
	GetSolvedProblemIDs(ctx context.Context, userID int) (map[int]bool, error)
	RecordAttempt(ctx context.Context, userID, problemID int, status string, solutionCode *string) (*AttemptOutcome, error)
}

type progressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID, problemID int) (*models.ProgressRecord, error) {
	query := `SELECT id, user_id, problem_id, status, attempts, last_attempt_date, solution_code
              FROM user_progress WHERE user_id = ? AND problem_id = ?`

	var record models.ProgressRecord
	if err := r.db.GetContext(ctx, &record, query, userID, problemID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return &record, nil
}

func (r *progressRepository) GetAll(ctx context.Context, userID int) ([]models.ProgressRecord, error) {
	query := `SELECT id, user_id, problem_id, status, attempts, last_attempt_date, solution_code
              FROM user_progress WHERE user_id = ? ORDER BY problem_id`

	records := []models.ProgressRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get progress records: %w", err)
	}

	return records, nil
}

func (r *progressRepository) GetSolvedProblemIDs(ctx context.Context, userID int) (map[int]bool, error) {
	query := `SELECT problem_id FROM user_progress WHERE user_id = ? AND status = ?`

	var problemIDs []int
	if err := r.db.SelectContext(ctx, &problemIDs, query, userID, models.StatusSolved); err != nil {
		return nil, fmt.Errorf("failed to get solved problem IDs: %w", err)
	}

	solvedMap := make(map[int]bool, len(problemIDs))
	for _, id := range problemIDs {
		solvedMap[id] = true
	}

	return solvedMap, nil
}

// RecordAttempt creates or updates the progress record for one submission.
// The row is locked for the duration of the transaction so two racing
// submissions cannot lose an attempts increment or double-report FirstSolve.
// Solved is terminal: a later attempted submission never downgrades it.
// A nil solutionCode leaves the stored code untouched.
func (r *progressRepository) RecordAttempt(ctx context.Context, userID, problemID int, status string, solutionCode *string) (*AttemptOutcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing models.ProgressRecord
	err = tx.GetContext(ctx, &existing,
		`SELECT id, user_id, problem_id, status, attempts, last_attempt_date, solution_code
         FROM user_progress WHERE user_id = ? AND problem_id = ? FOR UPDATE`,
		userID, problemID)

	var outcome AttemptOutcome
	switch {
	case err == sql.ErrNoRows:
		next := models.NextStatus(models.StatusNotDone, status)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_progress (user_id, problem_id, status, attempts, solution_code)
             VALUES (?, ?, ?, 1, ?)`,
			userID, problemID, next, solutionCode)
		if err != nil {
			return nil, fmt.Errorf("failed to create progress: %w", err)
		}
		outcome = AttemptOutcome{
			Status:     next,
			Attempts:   1,
			FirstSolve: next == models.StatusSolved,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read progress: %w", err)
	default:
		next := models.NextStatus(existing.Status, status)
		_, err = tx.ExecContext(ctx,
			`UPDATE user_progress
             SET status = ?, attempts = attempts + 1, last_attempt_date = NOW(),
                 solution_code = COALESCE(?, solution_code)
             WHERE user_id = ? AND problem_id = ?`,
			next, solutionCode, userID, problemID)
		if err != nil {
			return nil, fmt.Errorf("failed to update progress: %w", err)
		}
		outcome = AttemptOutcome{
			Status:     next,
			Attempts:   existing.Attempts + 1,
			FirstSolve: next == models.StatusSolved && existing.Status != models.StatusSolved,
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit progress: %w", err)
	}

	return &outcome, nil
}
