package handlers

import (
	"bananaprep/internal/catalog"
	"bananaprep/internal/logger"
	"bananaprep/internal/middlewares"
	"bananaprep/internal/models"
	"bananaprep/internal/repositories"
	"bananaprep/internal/services"
	"bananaprep/internal/workerpool"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	catalog      *catalog.Catalog
	runner       services.Executor
	verifier     *services.Verifier
	progressRepo repositories.ProgressRepository
	events       workerpool.SolvePublisher
}

func NewSubmissionHandler(cat *catalog.Catalog, runner services.Executor, verifier *services.Verifier,
	progressRepo repositories.ProgressRepository, events workerpool.SolvePublisher) *SubmissionHandler {
	return &SubmissionHandler{
		catalog:      cat,
		runner:       runner,
		verifier:     verifier,
		progressRepo: progressRepo,
		events:       events,
	}
}

// Run executes code against the interpreter without touching any problem
// or progress state. Works the same authenticated or not.
func (h *SubmissionHandler) Run(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middlewares.UserID(c)

	result, err := h.runner.Execute(c.Request.Context(), services.ExecRequest{
		UserID: userID,
		Code:   req.Code,
		Input:  req.Input,
	})
	if err != nil {
		logger.Log.Error("Code execution setup failed",
			zap.Int("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute code"})
		return
	}

	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Verify runs a submission against the problem's test cases. The attempt is
// recorded before verification starts; a full pass still needs a separate
// confirmation through the progress update endpoint before it counts as
// solved.
func (h *SubmissionHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
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
	if len(problem.TestCases) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This problem does not have test cases"})
		return
	}

	progressSaved := false
	saveError := ""
	userID, authenticated := middlewares.UserID(c)
	if authenticated {
		_, err := h.progressRepo.RecordAttempt(c.Request.Context(), userID, problem.ID,
			models.StatusAttempted, &req.Code)
		if err != nil {
			logger.Log.Error("Failed to record attempt",
				zap.Int("user_id", userID),
				zap.Int("problem_id", problem.ID),
				zap.Error(err))
			saveError = "Failed to save progress"
		} else {
			progressSaved = true
		}
	}

	verdict := h.verifier.RunTests(c.Request.Context(), userID, req.Code, problem.TestCases)

	response := gin.H{
		"verdict":        verdict,
		"progress_saved": progressSaved,
	}
	if saveError != "" {
		response["save_error"] = saveError
	}
	c.JSON(http.StatusOK, response)
}

// ValidateAnswer checks a single-answer submission. Correct answers are
// persisted as solved directly; answer problems have no confirmation step.
func (h *SubmissionHandler) ValidateAnswer(c *gin.Context) {
	var req models.AnswerRequest
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

	isCorrect, err := h.verifier.CheckAnswer(problem, req.UserAnswer)
	if err != nil {
		if errors.Is(err, services.ErrNoAnswer) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This problem does not have a defined answer"})
			return
		}
		logger.Log.Error("Answer validation failed",
			zap.Int("problem_id", problem.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate answer"})
		return
	}

	message := "Incorrect answer. Try again."
	status := models.StatusAttempted
	if isCorrect {
		message = "Correct answer!"
		status = models.StatusSolved
	}

	response := gin.H{
		"is_correct": isCorrect,
		"message":    message,
	}

	userID, authenticated := middlewares.UserID(c)
	if authenticated {
		outcome, err := h.progressRepo.RecordAttempt(c.Request.Context(), userID, problem.ID, status, nil)
		if err != nil {
			logger.Log.Error("Failed to record answer attempt",
				zap.Int("user_id", userID),
				zap.Int("problem_id", problem.ID),
				zap.Error(err))
			response["progress_saved"] = false
			response["save_error"] = "Failed to save progress"
			c.JSON(http.StatusOK, response)
			return
		}
		response["progress_saved"] = true

		if outcome.FirstSolve {
			if err := h.events.PublishSolve(c.Request.Context(), userID, problem.Difficulty); err != nil {
				logger.Log.Error("Failed to publish solve event",
					zap.Int("user_id", userID),
					zap.Int("problem_id", problem.ID),
					zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *SubmissionHandler) RegisterRoutes(router *gin.Engine, optionalAuth gin.HandlerFunc) {
	submissionGroup := router.Group("/submissions")
	submissionGroup.Use(optionalAuth)
	{
		submissionGroup.POST("/run", h.Run)
		submissionGroup.POST("/verify", h.Verify)
	}

	answerGroup := router.Group("/answers")
	answerGroup.Use(optionalAuth)
	{
		answerGroup.POST("/validate", h.ValidateAnswer)
	}
}
