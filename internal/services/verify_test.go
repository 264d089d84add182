package services_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"bananaprep/internal/logger"
	"bananaprep/internal/models"
	"bananaprep/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

type stubExecutor struct {
	fn    func(req services.ExecRequest) (*services.ExecResult, error)
	calls []services.ExecRequest
}

func (s *stubExecutor) Execute(_ context.Context, req services.ExecRequest) (*services.ExecResult, error) {
	s.calls = append(s.calls, req)
	return s.fn(req)
}

func TestCheckAnswer(t *testing.T) {
	v := services.NewVerifier(&stubExecutor{})
	problem := &models.Problem{Answer: "2"}

	tests := []struct {
		name       string
		userAnswer string
		want       bool
	}{
		{"exact match", "2", true},
		{"surrounding whitespace ignored", "  2 ", true},
		{"case folded", "Two", false},
		{"different numeric formatting rejected", "2.0", false},
		{"empty answer", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.CheckAnswer(problem, tc.userAnswer)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckAnswer_CaseFolding(t *testing.T) {
	v := services.NewVerifier(&stubExecutor{})
	problem := &models.Problem{Answer: "Ohm's Law"}

	got, err := v.CheckAnswer(problem, " ohm's law ")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCheckAnswer_NoAnswerDefined(t *testing.T) {
	v := services.NewVerifier(&stubExecutor{})

	_, err := v.CheckAnswer(&models.Problem{}, "2")
	assert.ErrorIs(t, err, services.ErrNoAnswer)
}

func TestRunTests_AllPass(t *testing.T) {
	exec := &stubExecutor{fn: func(req services.ExecRequest) (*services.ExecResult, error) {
		return &services.ExecResult{Success: true, Output: "ans =  5\n"}, nil
	}}
	v := services.NewVerifier(exec)

	tests := []models.TestCase{
		{Call: "disp(f(1))", Expected: "5"},
		{Call: "disp(f(2))", Expected: "ans = 5"},
	}

	verdict := v.RunTests(context.Background(), 1, "function f(x)\nend", tests)

	assert.True(t, verdict.AllPassed)
	assert.Equal(t, 2, verdict.PassedCount)
	assert.Equal(t, 2, verdict.TotalCount)
	require.Len(t, verdict.Results, 2)
	assert.True(t, verdict.Results[0].Passed)
	assert.True(t, verdict.Results[1].Passed, "whitespace runs collapse before comparing")
}

func TestRunTests_SubstringContainment(t *testing.T) {
	exec := &stubExecutor{fn: func(req services.ExecRequest) (*services.ExecResult, error) {
		return &services.ExecResult{Success: true, Output: "debug: entering\nresult is 42\ndone\n"}, nil
	}}
	v := services.NewVerifier(exec)

	verdict := v.RunTests(context.Background(), 1, "code", []models.TestCase{
		{Call: "run()", Expected: "result is 42"},
	})

	assert.True(t, verdict.AllPassed, "extra diagnostic output around the expected value still passes")
}

func TestRunTests_ErrorCountsAsFailedAndContinues(t *testing.T) {
	exec := &stubExecutor{fn: func(req services.ExecRequest) (*services.ExecResult, error) {
		if req.TestCall == "boom()" {
			return &services.ExecResult{Success: false, Output: "parse error near line 1"}, nil
		}
		return &services.ExecResult{Success: true, Output: "7"}, nil
	}}
	v := services.NewVerifier(exec)

	verdict := v.RunTests(context.Background(), 1, "code", []models.TestCase{
		{Call: "boom()", Expected: "7"},
		{Call: "ok()", Expected: "7"},
	})

	assert.False(t, verdict.AllPassed)
	assert.Equal(t, 1, verdict.PassedCount)
	assert.Equal(t, 2, verdict.TotalCount)
	require.Len(t, verdict.Results, 2)
	assert.False(t, verdict.Results[0].Passed)
	assert.NotEmpty(t, verdict.Results[0].Error)
	assert.True(t, verdict.Results[1].Passed)
	assert.Empty(t, verdict.Results[1].Error)
	assert.Len(t, exec.calls, 2, "an erroring test never aborts the remaining ones")
}

func TestRunTests_ExecutorErrorSurfacedPerTest(t *testing.T) {
	exec := &stubExecutor{fn: func(req services.ExecRequest) (*services.ExecResult, error) {
		return nil, errors.New("interpreter unavailable")
	}}
	v := services.NewVerifier(exec)

	verdict := v.RunTests(context.Background(), 1, "code", []models.TestCase{
		{Call: "a()", Expected: "1"},
		{Call: "b()", Expected: "2"},
	})

	assert.Equal(t, 0, verdict.PassedCount)
	require.Len(t, verdict.Results, 2)
	for _, r := range verdict.Results {
		assert.Contains(t, r.Error, "interpreter unavailable")
	}
}

func TestRunTests_DeclarationOrderPreserved(t *testing.T) {
	exec := &stubExecutor{fn: func(req services.ExecRequest) (*services.ExecResult, error) {
		return &services.ExecResult{Success: true, Output: "x"}, nil
	}}
	v := services.NewVerifier(exec)

	tests := []models.TestCase{
		{Call: "first()", Expected: "1"},
		{Call: "second()", Expected: "2"},
		{Call: "third()", Expected: "3"},
	}
	verdict := v.RunTests(context.Background(), 1, "code", tests)

	require.Len(t, verdict.Results, 3)
	for i, r := range verdict.Results {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, tests[i].Call, r.Call)
	}
}

func TestRunTests_PassedNeverExceedsTotal(t *testing.T) {
	exec := &stubExecutor{fn: func(req services.ExecRequest) (*services.ExecResult, error) {
		return &services.ExecResult{Success: true, Output: req.TestCall}, nil
	}}
	v := services.NewVerifier(exec)

	verdict := v.RunTests(context.Background(), 1, "code", []models.TestCase{
		{Call: "match", Expected: "match"},
		{Call: "other", Expected: "nope"},
	})

	assert.LessOrEqual(t, verdict.PassedCount, verdict.TotalCount)
	assert.Equal(t, verdict.AllPassed, verdict.PassedCount == verdict.TotalCount)
}
