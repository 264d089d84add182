package handlers

import (
	"bananaprep/internal/logger"
	"bananaprep/internal/middlewares"
	"bananaprep/internal/models"
	"bananaprep/internal/repositories"
	"bananaprep/internal/services"
	"bananaprep/internal/utils"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo     repositories.UserRepository
	statsRepo    repositories.StatsRepository
	tokenService *services.TokenService
}

func NewAuthHandler(userRepo repositories.UserRepository, statsRepo repositories.StatsRepository,
	tokenService *services.TokenService) *AuthHandler {
	return &AuthHandler{
		userRepo:     userRepo,
		statsRepo:    statsRepo,
		tokenService: tokenService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists with this email"})
			return
		}
		logger.Log.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	// Every user starts with a zeroed stats row.
	if err := h.statsRepo.Create(c.Request.Context(), user.ID); err != nil {
		logger.Log.Error("Failed to create stats record",
			zap.Int("user_id", user.ID),
			zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user_id": user.ID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		return
	}

	accessToken, refreshToken, err := h.tokenService.GenerateTokens(user.ID, user.Email)
	if err != nil {
		logger.Log.Error("Failed to generate tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	refreshExpiresAt := time.Now().Add(services.RefreshTokenTTL)
	if err := h.userRepo.StoreRefreshToken(c.Request.Context(), user.ID, refreshToken, refreshExpiresAt); err != nil {
		logger.Log.Error("Failed to store refresh token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	if err := h.userRepo.UpdateLastLogin(c.Request.Context(), user.ID); err != nil {
		logger.Log.Warn("Failed to update last login",
			zap.Int("user_id", user.ID),
			zap.Error(err))
	}

	c.SetCookie("access_token", accessToken, int(services.AccessTokenTTL.Seconds()), "/", "", false, true)
	c.SetCookie("refresh_token", refreshToken, int(services.RefreshTokenTTL.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"user_id":   user.ID,
		"full_name": user.FullName,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err == nil && refreshToken != "" {
		if err := h.userRepo.RevokeToken(c.Request.Context(), refreshToken); err != nil {
			logger.Log.Warn("Failed to revoke token on logout", zap.Error(err))
		}
	}

	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Verify reports whether the caller has a valid session, refreshing the
// access token from the refresh token when needed. An expired session is a
// clean "not authenticated", clients fall back to practice mode.
func (h *AuthHandler) Verify(c *gin.Context) {
	accessToken, err := c.Cookie("access_token")
	if err == nil {
		claims, err := h.tokenService.ValidateToken(accessToken)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"is_authenticated": true, "user_id": claims.UserID})
			return
		}
	}

	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"is_authenticated": false, "error": "Authorization required"})
		return
	}

	if _, err := h.userRepo.GetRefreshToken(c.Request.Context(), refreshToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"is_authenticated": false, "error": "Invalid session"})
		return
	}

	claims, err := h.tokenService.ValidateToken(refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"is_authenticated": false, "error": "Invalid token"})
		return
	}

	newAccessToken, _, err := h.tokenService.GenerateTokens(claims.UserID, claims.Email)
	if err != nil {
		logger.Log.Error("Failed to generate new access token during verify", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"is_authenticated": false, "error": "Could not refresh session"})
		return
	}

	c.SetCookie("access_token", newAccessToken, int(services.AccessTokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"is_authenticated": true, "user_id": claims.UserID})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, _ := middlewares.UserID(c)

	profile, err := h.userRepo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Log.Error("Failed to get user profile",
			zap.Int("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) Stats(c *gin.Context) {
	userID, _ := middlewares.UserID(c)

	stats, err := h.statsRepo.Get(c.Request.Context(), userID)
	if err != nil {
		logger.Log.Error("Failed to get user stats",
			zap.Int("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AuthHandler) RegisterRoutes(router *gin.Engine, requireAuth gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/verify", h.Verify)
	}

	userGroup := router.Group("/user")
	userGroup.Use(requireAuth)
	{
		userGroup.GET("/profile", h.Profile)
		userGroup.GET("/stats", h.Stats)
	}
}
