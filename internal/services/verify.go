package services

import (
	"bananaprep/internal/logger"
	"bananaprep/internal/models"
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var ErrNoAnswer = errors.New("problem does not have a defined answer")

// Verifier decides correctness of submissions, either against a canonical
// answer string or by running the problem's test cases.
type Verifier struct {
	exec Executor
}

func NewVerifier(exec Executor) *Verifier {
	return &Verifier{exec: exec}
}

// CheckAnswer compares the user's answer against the canonical one after
// trimming and case-folding both. Exact string equality only; "2.0" does
// not match "2".
func (v *Verifier) CheckAnswer(problem *models.Problem, userAnswer string) (bool, error) {
	if problem.Answer == "" {
		return false, ErrNoAnswer
	}
	return normalizeAnswer(userAnswer) == normalizeAnswer(problem.Answer), nil
}

// RunTests evaluates every test case in declaration order, one at a time.
// An execution failure marks that test failed and evaluation continues;
// partial results are always surfaced per test.
func (v *Verifier) RunTests(ctx context.Context, userID int, code string, tests []models.TestCase) *models.Verdict {
	verdict := &models.Verdict{
		TotalCount: len(tests),
		Results:    make([]models.TestResult, 0, len(tests)),
	}

	for i, tc := range tests {
		result := models.TestResult{
			Index:    i + 1,
			Call:     tc.Call,
			Expected: tc.Expected,
		}

		res, err := v.exec.Execute(ctx, ExecRequest{
			UserID:   userID,
			Code:     code,
			TestCall: tc.Call,
		})
		switch {
		case err != nil:
			logger.Log.Warn("Test execution failed",
				zap.Int("test_index", result.Index),
				zap.Error(err))
			result.Error = err.Error()
		case !res.Success:
			result.Error = res.Output
		default:
			result.Actual = strings.TrimSpace(res.Output)
			// Containment, not equality: diagnostic output around the
			// expected value still passes.
			result.Passed = strings.Contains(collapseWhitespace(res.Output), collapseWhitespace(tc.Expected))
		}

		if result.Passed {
			verdict.PassedCount++
		}
		verdict.Results = append(verdict.Results, result)
	}

	verdict.AllPassed = verdict.PassedCount == verdict.TotalCount
	return verdict
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
