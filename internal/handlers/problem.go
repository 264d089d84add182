package handlers

import (
	"bananaprep/internal/catalog"
	"bananaprep/internal/logger"
	"bananaprep/internal/middlewares"
	"bananaprep/internal/models"
	"bananaprep/internal/repositories"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProblemHandler struct {
	catalog      *catalog.Catalog
	progressRepo repositories.ProgressRepository
}

func NewProblemHandler(cat *catalog.Catalog, progressRepo repositories.ProgressRepository) *ProblemHandler {
	return &ProblemHandler{
		catalog:      cat,
		progressRepo: progressRepo,
	}
}

// GetProblems returns the full catalog as list items. Authenticated users
// get their solved problems flagged; practice mode gets the bare list.
func (h *ProblemHandler) GetProblems(c *gin.Context) {
	solved := map[int]bool{}
	if userID, ok := middlewares.UserID(c); ok {
		var err error
		solved, err = h.progressRepo.GetSolvedProblemIDs(c.Request.Context(), userID)
		if err != nil {
			logger.Log.Error("Failed to get solved problem IDs",
				zap.Int("user_id", userID),
				zap.Error(err))
			solved = map[int]bool{}
		}
	}

	problems := h.catalog.All()
	items := make([]models.ProblemListItem, len(problems))
	for i, p := range problems {
		items[i] = models.NewProblemListItem(p, solved[p.ID])
	}

	c.JSON(http.StatusOK, gin.H{
		"problems": items,
		"count":    len(items),
	})
}

// GetProblemByID returns one problem statement. The canonical answer and
// expected test outputs are never included.
func (h *ProblemHandler) GetProblemByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	problem, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to get problem",
			zap.Int("problem_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem details"})
		return
	}

	isSolved := false
	if userID, ok := middlewares.UserID(c); ok {
		record, err := h.progressRepo.Get(c.Request.Context(), userID, id)
		if err == nil {
			isSolved = record.Status == models.StatusSolved
		}
	}

	c.JSON(http.StatusOK, models.NewProblemDetail(*problem, isSolved))
}

func (h *ProblemHandler) RegisterRoutes(router *gin.Engine, optionalAuth gin.HandlerFunc) {
	problemGroup := router.Group("/problems")
	problemGroup.Use(optionalAuth)
	{
		problemGroup.GET("", h.GetProblems)
		problemGroup.GET("/:id", h.GetProblemByID)
	}
}
