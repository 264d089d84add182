package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bananaprep/internal/handlers"
	"bananaprep/internal/middlewares"
	"bananaprep/internal/models"
	"bananaprep/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProblemRouter(t *testing.T, progress *stubProgressRepo) *gin.Engine {
	t.Helper()
	router := gin.New()
	tokenService := services.NewTokenService(testJWTSecret)
	handler := handlers.NewProblemHandler(testCatalog(t), progress)
	handler.RegisterRoutes(router, middlewares.OptionalAuthMiddleware(tokenService))
	return router
}

func getJSON(router *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetProblems_PracticeMode(t *testing.T) {
	router := newProblemRouter(t, &stubProgressRepo{})

	w := getJSON(router, "/problems")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Problems []models.ProblemListItem `json:"problems"`
		Count    int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "Divider", resp.Problems[0].Title)
	for _, p := range resp.Problems {
		assert.False(t, p.IsSolved)
	}
}

func TestGetProblems_SolvedFlags(t *testing.T) {
	progress := &stubProgressRepo{records: map[int]*models.ProgressRecord{
		1: {UserID: 5, ProblemID: 1, Status: models.StatusSolved},
		2: {UserID: 5, ProblemID: 2, Status: models.StatusAttempted},
	}}
	router := newProblemRouter(t, progress)

	w := getJSON(router, "/problems", authCookie(t, 5))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Problems []models.ProblemListItem `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Problems, 3)
	assert.False(t, resp.Problems[0].IsSolved)
	assert.True(t, resp.Problems[1].IsSolved)
	assert.False(t, resp.Problems[2].IsSolved, "attempted is not solved")
}

func TestGetProblemByID_StripsAnswerAndTests(t *testing.T) {
	router := newProblemRouter(t, &stubProgressRepo{})

	w := getJSON(router, "/problems/0")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"has_tests":true`)
	assert.NotContains(t, body, "disp(f(1))")
	assert.NotContains(t, body, `"expected"`)
}

func TestGetProblemByID_NotFound(t *testing.T) {
	router := newProblemRouter(t, &stubProgressRepo{})

	w := getJSON(router, "/problems/99")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProblemByID_InvalidID(t *testing.T) {
	router := newProblemRouter(t, &stubProgressRepo{})

	w := getJSON(router, "/problems/abc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
