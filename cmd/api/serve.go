package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-coach/internal/adapter/handler"
	"github.com/johnquangdev/interview-coach/internal/adapter/repository"
	"github.com/johnquangdev/interview-coach/internal/adapter/transport"
	domainrepo "github.com/johnquangdev/interview-coach/internal/domain/repositories"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/cache"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/database"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/messaging"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/storage"
	"github.com/johnquangdev/interview-coach/internal/usecase/analysis"
	"github.com/johnquangdev/interview-coach/internal/usecase/interview"
	"github.com/johnquangdev/interview-coach/internal/usecase/recorder"
	"github.com/johnquangdev/interview-coach/internal/usecase/session"
	pkgai "github.com/johnquangdev/interview-coach/pkg/ai"
	"github.com/johnquangdev/interview-coach/pkg/config"
	pkglogger "github.com/johnquangdev/interview-coach/pkg/logger"
	pkgvalidator "github.com/johnquangdev/interview-coach/pkg/validator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and live session server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	logger, err := pkglogger.New(cfg.Log.JSON || jsonLogs, cfg.Log.Debug || debugLogs)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	store, locker, closeCache, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	repo, closeRepo, err := newRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	var urls recorder.URLBuilder = storage.StaticURLs{Base: cfg.Storage.PublicURL, Bucket: cfg.Storage.BucketName}
	var resumes handler.ResumeLocator
	if cfg.Storage.Endpoint != "" {
		log.Println("📦 Connecting to object storage...")
		resumeStore, err := storage.NewResumeStore(ctx, &cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to object storage: %w", err)
		}
		urls = resumeStore
		resumes = resumeStore
	}

	skills, err := newSkillExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.AMQP.URL != "" {
		log.Println("📨 Connecting to message broker...")
		amqpPublisher, err := messaging.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		publisher = amqpPublisher
	}
	defer publisher.Close()

	// Initialize the analysis pipeline
	log.Println("🤖 Initializing analysis pipeline...")
	collaborators := pkgai.NewCollaboratorClient(cfg.Collaborators.ToneURL, cfg.Collaborators.FeedbackURL, cfg.Collaborators.Timeout)
	toneClassifier := analysis.NewToneClassifier(collaborators, m, logger)
	feedbackGenerator := analysis.NewFeedbackGenerator(collaborators, m, logger)
	sessionRecorder := recorder.New(repo, locker, skills, urls, m, logger)
	interviewService := interview.NewService(toneClassifier, feedbackGenerator, sessionRecorder, publisher, m, cfg.Session.PauseThreshold, logger)
	contexts := interview.NewContextStore(store, cfg.Session.ContextTTL)

	// Initialize handlers
	interviewHandler := handler.NewInterviewHandler(interviewService, repo, contexts, resumes, logger)
	sessionHandler := handler.NewSessionHandler(
		transport.NewUpgrader(cfg.Server.AllowedOrigins),
		interviewService,
		contexts,
		session.Options{
			MaxDuration:     cfg.Session.MaxDuration,
			AnalysisTimeout: cfg.Session.AnalysisTimeout,
			Assistant: session.AssistantConfig{
				FirstMessage: cfg.Session.FirstMessage,
				SystemPrompt: cfg.Session.SystemPrompt,
				Voice:        cfg.Session.Voice,
			},
		},
		m,
		logger,
	)

	e := newEcho(cfg)
	handler.NewRouter(cfg, m, interviewHandler, sessionHandler).Setup(e)

	// Start server
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("store_backend", cfg.Store.Backend),
			zap.Bool("redis", cfg.RedisEnabled()),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Websocket sessions are hijacked and not closed by e.Shutdown
	if err := sessionHandler.Shutdown(shutdownCtx); err != nil {
		logger.Warn("live sessions did not drain before the shutdown timeout", zap.Error(err))
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

func newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	return e
}

// newCache picks Redis when configured and the in-process store otherwise
func newCache(cfg *config.Config) (cache.Store, cache.Locker, func(), error) {
	if !cfg.RedisEnabled() {
		log.Println("⚠️  REDIS_HOST not set, using in-process cache and locks (single instance only)")
		mem := cache.NewMemoryStore()
		return mem, cache.NewMemoryLocker(), mem.Close, nil
	}

	log.Println("📦 Connecting to Redis...")
	client, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	closeFn := func() { _ = client.Close() }
	return cache.NewRedisStore(client), cache.NewRedisLocker(client, cfg.Session.LockTTL), closeFn, nil
}

// newRepository opens the configured SessionRecord backend
func newRepository(cfg *config.Config) (domainrepo.InterviewRepository, func(), error) {
	if strings.EqualFold(cfg.Store.Backend, "rest") {
		log.Printf("🌐 Using hosted REST store at %s", cfg.Store.Rest.URL)
		return repository.NewRestInterviewRepository(&cfg.Store.Rest), func() {}, nil
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Production deployments manage schema with the migrate command.
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			_ = database.CloseDB(db)
			return nil, nil, fmt.Errorf("DB_AUTO_MIGRATE is enabled in production; run the migrate command instead")
		}
		if _, err := database.Migrate(db, database.MigrationsDir, migrate.Up, 0); err != nil {
			_ = database.CloseDB(db)
			return nil, nil, err
		}
	}

	return repository.NewInterviewRepository(db), func() { _ = database.CloseDB(db) }, nil
}

// newSkillExtractor returns nil when skill extraction is disabled
func newSkillExtractor(ctx context.Context, cfg *config.Config) (pkgai.SkillExtractor, error) {
	switch strings.ToLower(cfg.Skills.Provider) {
	case "groq":
		return pkgai.NewGroqClient(&cfg.Groq), nil
	case "gemini":
		client, err := pkgai.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, nil
	}
}
