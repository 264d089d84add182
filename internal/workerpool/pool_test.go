package workerpool_test

import (
	"context"
	"testing"

	"bananaprep/internal/models"
	"bananaprep/internal/workerpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type incrementCall struct {
	userID     int
	difficulty string
}

type stubStatsRepo struct {
	increments []incrementCall
	err        error
}

func (s *stubStatsRepo) Get(_ context.Context, userID int) (*models.StatsRecord, error) {
	return &models.StatsRecord{UserID: userID}, nil
}

func (s *stubStatsRepo) Create(_ context.Context, userID int) error {
	return nil
}

func (s *stubStatsRepo) IncrementSolved(_ context.Context, userID int, difficulty string) error {
	s.increments = append(s.increments, incrementCall{userID, difficulty})
	return s.err
}

func TestApplySolveEvent_IncrementsCounter(t *testing.T) {
	stats := &stubStatsRepo{}

	err := workerpool.ApplySolveEvent(context.Background(), map[string]interface{}{
		"user_id":    "42",
		"difficulty": models.DifficultyMedium,
	}, stats)

	require.NoError(t, err)
	require.Len(t, stats.increments, 1)
	assert.Equal(t, incrementCall{userID: 42, difficulty: "medium"}, stats.increments[0])
}

func TestApplySolveEvent_MissingUserID(t *testing.T) {
	stats := &stubStatsRepo{}

	err := workerpool.ApplySolveEvent(context.Background(), map[string]interface{}{
		"difficulty": models.DifficultyEasy,
	}, stats)

	require.Error(t, err)
	assert.Empty(t, stats.increments)
}

func TestApplySolveEvent_MalformedUserID(t *testing.T) {
	stats := &stubStatsRepo{}

	err := workerpool.ApplySolveEvent(context.Background(), map[string]interface{}{
		"user_id":    "not-a-number",
		"difficulty": models.DifficultyEasy,
	}, stats)

	require.Error(t, err)
	assert.Empty(t, stats.increments)
}

func TestApplySolveEvent_MissingDifficulty(t *testing.T) {
	stats := &stubStatsRepo{}

	err := workerpool.ApplySolveEvent(context.Background(), map[string]interface{}{
		"user_id": "42",
	}, stats)

	require.Error(t, err)
	assert.Empty(t, stats.increments)
}
