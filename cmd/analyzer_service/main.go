package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"clauselens/internal/analyzer"
	"clauselens/internal/api"
	"clauselens/internal/chat"
	"clauselens/internal/config"
	"clauselens/internal/extractor"
	"clauselens/internal/llm"
	"clauselens/internal/storage"
	"clauselens/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("AnalyzerService", "")
	appLogger.Info("Starting analyzer service...")

	ctx := context.Background()

	// 3. Initialize dependencies
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create completion client: %v", err)
	}

	uploads, err := storage.NewUploadStore(ctx, cfg.Databases.MinIO)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	analyses, err := storage.NewAnalysisStore(ctx, cfg.Databases.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	feedback, err := storage.NewFeedbackStore(ctx, cfg.Databases.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	ocrClient, err := extractor.NewHTTPOCRClient(cfg.OCR)
	if err != nil {
		log.Fatalf("Failed to configure OCR client: %v", err)
	}

	// 4. Create the services
	analyzerService := analyzer.New(llmClient, logger.New("Analyzer", ""))
	chatService := chat.New(llmClient, logger.New("Chat", ""))

	handler := api.NewHandler(analyzerService, chatService, uploads, analyses, feedback, ocrClient, appLogger)

	// 5. Start the HTTP server
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(handler, cfg.Auth.Enabled, cfg.Auth.JwtSecret)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Forced shutdown: %v", err))
	}
	appLogger.Info("Server stopped")
}
