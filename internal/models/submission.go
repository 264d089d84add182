package models

import (
	"errors"
	"strings"
)

type RunRequest struct {
	Code  string `json:"code"`
	Input string `json:"input"`
}

func (r *RunRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code cannot be empty")
	}
	return nil
}

type VerifyRequest struct {
	ProblemID *int   `json:"problem_id" binding:"required"`
	Code      string `json:"code"`
}

func (r *VerifyRequest) Validate() error {
	if *r.ProblemID < 0 {
		return errors.New("problem ID must be a non-negative integer")
	}
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code cannot be empty")
	}
	return nil
}

type AnswerRequest struct {
	ProblemID  *int   `json:"problem_id" binding:"required"`
	UserAnswer string `json:"user_answer"`
}

func (r *AnswerRequest) Validate() error {
	if *r.ProblemID < 0 {
		return errors.New("problem ID must be a non-negative integer")
	}
	if strings.TrimSpace(r.UserAnswer) == "" {
		return errors.New("answer cannot be empty")
	}
	return nil
}

type ProgressUpdateRequest struct {
	ProblemID    *int   `json:"problem_id" binding:"required"`
	Status       string `json:"status"`
	SolutionCode string `json:"solution_code"`
}

func (r *ProgressUpdateRequest) Validate() error {
	if *r.ProblemID < 0 {
		return errors.New("problem ID must be a non-negative integer")
	}
	if !ValidStatus(r.Status) {
		return errors.New("status must be 'attempted' or 'solved'")
	}
	return nil
}

// TestResult is the outcome of one test case. Results are transient, they
// are returned to the client and never persisted individually.
type TestResult struct {
	Index    int    `json:"index"`
	Call     string `json:"call"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
}

// Verdict aggregates the test results of one submission.
type Verdict struct {
	AllPassed   bool         `json:"all_passed"`
	PassedCount int          `json:"passed_count"`
	TotalCount  int          `json:"total_count"`
	Results     []TestResult `json:"results"`
}
