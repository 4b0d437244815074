package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/config"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/handlers"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/logger"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/queue"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database initialized")

	candidateRepo := repositories.NewCandidateRepository(db)
	jobRepo := repositories.NewJobPostingRepository(db)
	promptRepo := repositories.NewPromptRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)

	jobQueue, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer jobQueue.Close()

	ctx := context.Background()

	// AI models are optional: with no API keys configured the cascade runs
	// straight to the heuristic scorer.
	var primary services.TextGenerator
	var geminiService services.GeminiService
	if cfg.Gemini.APIKey != "" {
		geminiService, err = services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			zlog.Fatal("failed to initialize Gemini", zap.Error(err))
		}
		primary = geminiService
		zlog.Info("Gemini initialized", zap.String("model", cfg.Gemini.Model))
	}

	var secondary services.TextGenerator
	if cfg.OpenAI.APIKey != "" {
		secondary = services.NewOpenAIService(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		zlog.Info("OpenAI initialized", zap.String("model", cfg.OpenAI.Model))
	}

	var retriever services.ContextRetriever
	if cfg.Qdrant.Enabled && geminiService != nil {
		store, err := services.NewReferenceStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			zlog.Fatal("failed to initialize Qdrant", zap.Error(err))
		}
		if err := store.InitCollection(ctx); err != nil {
			zlog.Fatal("failed to initialize Qdrant collection", zap.Error(err))
		}
		retriever = services.NewReferenceContextRetriever(geminiService, store)
		zlog.Info("Qdrant reference store initialized", zap.String("collection", cfg.Qdrant.Collection))
	}

	orchestrator := services.NewEvaluationOrchestrator(
		primary,
		secondary,
		services.NewHeuristicScorer(),
		retriever,
		cfg.Gemini.Timeout,
		zlog,
	)

	statusResolver := services.NewStatusResolver(candidateRepo)
	notifier := services.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, zlog)

	evaluator := services.NewEvaluatorService(
		candidateRepo,
		jobRepo,
		promptRepo,
		evalRepo,
		orchestrator,
		statusResolver,
		notifier,
		zlog,
	)

	worker := services.NewWorker(
		jobQueue,
		candidateRepo,
		evalRepo,
		evaluator,
		services.WorkerOptions{
			Concurrency:        cfg.Worker.Concurrency,
			MaxAttempts:        cfg.Worker.RetryMaxAttempts,
			RetryBaseDelay:     cfg.Worker.RetryBaseDelay,
			ReevaluateDecided:  cfg.Worker.ReevaluateDecided,
			CompletedRetention: cfg.Worker.CompletedRetention,
			FailedRetention:    cfg.Worker.FailedRetention,
		},
		zlog,
	)
	if err := worker.Start(ctx); err != nil {
		zlog.Fatal("failed to start evaluation worker", zap.Error(err))
	}

	uploadHandler := handlers.NewUploadHandler(
		candidateRepo,
		jobRepo,
		services.NewTextExtractor(),
		services.NewContentValidator(cfg.Validator.MinTextLength),
		services.NewContentValidator(cfg.Validator.PublicMinTextLength),
		cfg.Storage.MaxFileSize,
	)
	evaluateHandler := handlers.NewEvaluateHandler(evaluator, worker, evalRepo)
	resultHandler := handlers.NewResultHandler(evalRepo)
	candidateHandler := handlers.NewCandidateHandler(candidateRepo, statusResolver)
	adminHandler := handlers.NewAdminHandler(jobRepo, promptRepo)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Collage API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/evaluate", evaluateHandler.HandleEvaluate)
	api.Post("/evaluate/bulk", evaluateHandler.HandleBulkEvaluate)
	api.Get("/evaluate/bulk/:jobID/progress", evaluateHandler.HandleBulkProgress)
	api.Get("/evaluate/jobs/:id", evaluateHandler.HandleGetJob)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Get("/candidates/:id", candidateHandler.HandleGetCandidate)
	api.Get("/candidates/:id/result", resultHandler.HandleGetLatestResult)
	api.Post("/candidates/:id/status", candidateHandler.HandleOverrideStatus)
	api.Post("/jobs", adminHandler.HandleCreateJob)
	api.Get("/jobs/:id", adminHandler.HandleGetJob)
	api.Post("/prompts", adminHandler.HandleCreatePrompt)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
