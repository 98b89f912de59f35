package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/config"
	"github.com/venturekit/accel-api/internal/database"
	"github.com/venturekit/accel-api/internal/handler"
	"github.com/venturekit/accel-api/internal/middleware"
	"github.com/venturekit/accel-api/internal/models"
	"github.com/venturekit/accel-api/internal/repository"
	"github.com/venturekit/accel-api/internal/router"
	"github.com/venturekit/accel-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Competition{},
		&models.Stage{},
		&models.Criterion{},
		&models.Submission{},
		&models.ScoreRecord{},
		&models.JudgeAssignment{},
		&models.InterviewSlot{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	stageRepo := repository.NewStageRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	judgeRepo := repository.NewJudgeRepository(db)
	slotRepo := repository.NewSlotRepository(db)

	aggregateService := service.NewAggregateService(scoreRepo, stageRepo, submissionRepo, judgeRepo, logger)
	rankingService := service.NewRankingService(stageRepo, submissionRepo, aggregateService, redisClient, cfg.RankingCacheTTL, logger)
	scoreService := service.NewScoreService(scoreRepo, stageRepo, submissionRepo, aggregateService, rankingService, validate, logger)
	progressionService := service.NewProgressionService(submissionRepo, validate, logger)
	slotService := service.NewSlotService(slotRepo, stageRepo, submissionRepo, validate, cfg.MeetingHost, logger)
	judgeService := service.NewJudgeService(judgeRepo, validate, logger)

	scoreHandler := handler.NewScoreHandler(scoreService, logger)
	scoreboardHandler := handler.NewScoreboardHandler(aggregateService, logger)
	progressionHandler := handler.NewProgressionHandler(progressionService, logger)
	slotHandler := handler.NewSlotHandler(slotService, logger)
	rankingHandler := handler.NewRankingHandler(rankingService, logger)
	judgeHandler := handler.NewJudgeHandler(judgeService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ScoreHandler:       scoreHandler,
		ScoreboardHandler:  scoreboardHandler,
		ProgressionHandler: progressionHandler,
		SlotHandler:        slotHandler,
		RankingHandler:     rankingHandler,
		JudgeHandler:       judgeHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		AdminMiddleware:    middleware.RequireRole("admin", "organizer"),
		ScoreRateLimiter:   middleware.RateLimit("scores", cfg.ScoreRateLimit, cfg.ScoreRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
