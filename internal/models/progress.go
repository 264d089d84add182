package models

import "time"

const (
	StatusNotDone   = "not-done"
	StatusAttempted = "attempted"
	StatusSolved    = "solved"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidStatus reports whether s is a status a client may submit.
// not-done is implicit (no record) and can never be written.
func ValidStatus(s string) bool {
	return s == StatusAttempted || s == StatusSolved
}

// NextStatus applies the progress state machine: solved is terminal,
// everything else moves to the proposed status.
func NextStatus(current, proposed string) string {
	if current == StatusSolved {
		return StatusSolved
	}
	if !ValidStatus(proposed) {
		return StatusAttempted
	}
	return proposed
}

// ProgressRecord is the durable per-user, per-problem state.
type ProgressRecord struct {
	ID              int       `db:"id" json:"id"`
	UserID          int       `db:"user_id" json:"user_id"`
	ProblemID       int       `db:"problem_id" json:"problem_id"`
	Status          string    `db:"status" json:"status"`
	Attempts        int       `db:"attempts" json:"attempts"`
	LastAttemptDate time.Time `db:"last_attempt_date" json:"last_attempt_date"`
	SolutionCode    *string   `db:"solution_code" json:"solution_code,omitempty"`
}

// StatsRecord holds per-user solved counters, one row per user.
type StatsRecord struct {
	UserID       int       `db:"user_id" json:"user_id"`
	EasySolved   int       `db:"easy_solved" json:"easy_solved"`
	MediumSolved int       `db:"medium_solved" json:"medium_solved"`
	HardSolved   int       `db:"hard_solved" json:"hard_solved"`
	LastUpdated  time.Time `db:"last_updated" json:"last_updated"`
}
