package handlers

import (
	"bananaprep/internal/catalog"
	"bananaprep/internal/logger"
	"bananaprep/internal/middlewares"
	"bananaprep/internal/models"
	"bananaprep/internal/repositories"
	"bananaprep/internal/workerpool"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProgressHandler struct {
	catalog      *catalog.Catalog
	progressRepo repositories.ProgressRepository
	events       workerpool.SolvePublisher
}

func NewProgressHandler(cat *catalog.Catalog, progressRepo repositories.ProgressRepository,
	events workerpool.SolvePublisher) *ProgressHandler {
	return &ProgressHandler{
		catalog:      cat,
		progressRepo: progressRepo,
		events:       events,
	}
}

// GetAll returns every progress record for the user. No progress yet is an
// empty list, not an error.
func (h *ProgressHandler) GetAll(c *gin.Context) {
	userID, _ := middlewares.UserID(c)

	records, err := h.progressRepo.GetAll(c.Request.Context(), userID)
	if err != nil {
		logger.Log.Error("Failed to get progress records",
			zap.Int("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"progress": records,
		"count":    len(records),
	})
}

// GetOne returns the progress for a single problem, together with the
// answer-stripped problem statement.
func (h *ProgressHandler) GetOne(c *gin.Context) {
	problemID, err := strconv.Atoi(c.Param("problemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	userID, _ := middlewares.UserID(c)

	record, err := h.progressRepo.Get(c.Request.Context(), userID, problemID)
	if err != nil {
		if errors.Is(err, repositories.ErrProgressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No progress found for this problem"})
			return
		}
		logger.Log.Error("Failed to get progress",
			zap.Int("user_id", userID),
			zap.Int("problem_id", problemID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve progress"})
		return
	}

	response := gin.H{"progress": record}
	if problem, err := h.catalog.Get(problemID); err == nil {
		response["problem"] = models.NewProblemDetail(*problem, record.Status == models.StatusSolved)
	}

	c.JSON(http.StatusOK, response)
}

// Update applies a status transition for one problem. This is also the
// confirmation step that commits solved after a full-pass verdict. Solved
// is terminal, the state machine never downgrades it, and the stats
// counters are bumped only on a genuine first solve.
func (h *ProgressHandler) Update(c *gin.Context) {
	var req models.ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	problem, err := h.catalog.Get(*req.ProblemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		return
	}

	userID, _ := middlewares.UserID(c)

	var solutionCode *string
	if req.SolutionCode != "" {
		solutionCode = &req.SolutionCode
	}

	outcome, err := h.progressRepo.RecordAttempt(c.Request.Context(), userID, problem.ID, req.Status, solutionCode)
	if err != nil {
		logger.Log.Error("Failed to update progress",
			zap.Int("user_id", userID),
			zap.Int("problem_id", problem.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save progress"})
		return
	}

	if outcome.FirstSolve {
		if err := h.events.PublishSolve(c.Request.Context(), userID, problem.Difficulty); err != nil {
			logger.Log.Error("Failed to publish solve event",
				zap.Int("user_id", userID),
				zap.Int("problem_id", problem.ID),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Progress updated successfully",
		"status":   outcome.Status,
		"attempts": outcome.Attempts,
	})
}

func (h *ProgressHandler) RegisterRoutes(router *gin.Engine, requireAuth gin.HandlerFunc) {
	progressGroup := router.Group("/progress")
	progressGroup.Use(requireAuth)
	{
		progressGroup.GET("", h.GetAll)
		progressGroup.GET("/:problemId", h.GetOne)
		progressGroup.POST("/update", h.Update)
	}
}
