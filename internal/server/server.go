package server

import (
	"bananaprep/configs"
	"bananaprep/internal/catalog"
	"bananaprep/internal/dbs"
	"bananaprep/internal/handlers"
	"bananaprep/internal/logger"
	"bananaprep/internal/middlewares"
	"bananaprep/internal/repositories"
	"bananaprep/internal/services"
	"bananaprep/internal/workerpool"

	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const solveEventStream = "solve_events"

func StartGinServer() {
	logger.InitLogger()
	defer logger.SyncLogger()

	config := configs.LoadConfig()

	db, err := dbs.Init(config)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := dbs.InitRedis(ctx, config.RedisAddr); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer dbs.CloseRedis()

	problemCatalog, err := catalog.Load(config.ProblemsPath)
	if err != nil {
		log.Fatalf("Failed to load problem catalog: %v", err)
	}
	logger.Log.Info("Problem catalog loaded",
		zap.String("path", config.ProblemsPath),
		zap.Int("count", problemCatalog.Len()))

	runner, err := services.NewOctaveRunner(config.OctavePath, config.OctaveWorkDir, config.OctaveTimeout)
	if err != nil {
		log.Fatalf("Failed to create octave runner: %v", err)
	}
	verifier := services.NewVerifier(runner)

	cache := services.NewRedisCache(dbs.RedisClient)
	tokenService := services.NewTokenService(config.JWTSecret)

	userRepo := repositories.NewUserRepository(db, cache)
	progressRepo := repositories.NewProgressRepository(db)
	statsRepo := repositories.NewStatsRepository(db, cache)

	pool := workerpool.NewStatsWorkerPool(config.NumberOfWorkers, dbs.RedisClient, solveEventStream, "stats_aggregators", statsRepo)
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("Failed to start stats worker pool: %v", err)
	}
	defer pool.Stop()

	events := workerpool.NewSolvePublisher(dbs.RedisClient, solveEventStream)

	router := gin.New()
	router.Use(middlewares.ErrorHandlerMiddleware())

	requireAuth := middlewares.AuthMiddleware(tokenService)
	optionalAuth := middlewares.OptionalAuthMiddleware(tokenService)

	handlers.NewAuthHandler(userRepo, statsRepo, tokenService).RegisterRoutes(router, requireAuth)
	handlers.NewProblemHandler(problemCatalog, progressRepo).RegisterRoutes(router, optionalAuth)
	handlers.NewSubmissionHandler(problemCatalog, runner, verifier, progressRepo, events).RegisterRoutes(router, optionalAuth)
	handlers.NewProgressHandler(problemCatalog, progressRepo, events).RegisterRoutes(router, requireAuth)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	port := ":" + config.ServerPort
	log.Printf("Starting server on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
