package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orionfest/backend/config"
	"github.com/orionfest/backend/internal/analytics"
	"github.com/orionfest/backend/internal/auth"
	"github.com/orionfest/backend/internal/email"
	"github.com/orionfest/backend/internal/emaillogs"
	"github.com/orionfest/backend/internal/linkedin"
	"github.com/orionfest/backend/internal/middleware"
	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/internal/realtime"
	"github.com/orionfest/backend/internal/share"
	"github.com/orionfest/backend/internal/templates"
	"github.com/orionfest/backend/internal/visitors"
	"github.com/orionfest/backend/pkg/database"
	"github.com/orionfest/backend/pkg/queue"
	redisclient "github.com/orionfest/backend/pkg/redis"
	"github.com/orionfest/backend/pkg/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// S3 holds share-template images; the share flow degrades to text-only
	// posts without it.
	var s3Store *storage.S3
	if cfg.AWS.TemplatesBucket != "" {
		s3Store, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			TemplatesBucket:      cfg.AWS.TemplatesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 unavailable, share images disabled", zap.Error(err))
			s3Store = nil
		}
	}

	renderer, err := email.NewRenderer(cfg.Event)
	if err != nil {
		logger.Fatal("failed to parse ticket template", zap.Error(err))
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	emailLogs := emaillogs.NewRepository(pool)
	mailer := email.NewQueueMailer(jobQueue, emailLogs, renderer, logger)

	pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, pubsub, pubsub)
	defer hub.Close()

	sessions := share.NewRedisStore(rdb.Client)
	liClient := linkedin.NewClient(
		cfg.LinkedIn.ClientID,
		cfg.LinkedIn.ClientSecret,
		cfg.LinkedIn.RedirectURI(cfg.Server.BaseURL),
		logger,
	)

	var shareImages share.ImageSource
	var templateResolver linkedin.TemplateResolver
	if s3Store != nil {
		shareImages = templates.NewImages(s3Store)
		templateResolver = s3Store
	}
	coordinator := share.NewCoordinator(sessions, liClient, shareImages, cfg.Event, cfg.LinkedIn.ShareURL, logger)

	visitorRepo := visitors.NewRepository(pool)
	accountRepo := auth.NewRepository(pool)
	registration := visitors.NewService(visitorRepo, accountRepo, renderer, mailer, hub, logger)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	visitorHandler := visitors.NewHandler(registration, visitorRepo, coordinator, coordinator, logger)
	authHandler := auth.NewHandler(accountRepo, jwtService, logger)
	linkedinHandler := linkedin.NewHandler(liClient, sessions, templateResolver, cfg.LinkedIn.SuccessRedirect, logger)
	shareHandler := share.NewHandler(coordinator, logger)
	emailLogHandler := emaillogs.NewHandler(emailLogs, visitorRepo, renderer, mailer, logger)
	statsHandler := analytics.NewHandler(pool)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	r.Use(middleware.Session())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/register", visitorHandler.Register)

		api.POST("/share/choice", shareHandler.Choice)
		api.GET("/share/resume", shareHandler.Resume)
		api.POST("/share/retry", shareHandler.Retry)

		api.GET("/auth/linkedin", linkedinHandler.Authorize)
		api.GET("/auth/linkedin/callback", linkedinHandler.Callback)
		api.POST("/linkedin/post", linkedinHandler.Post)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		admin := api.Group("", middleware.JWT(jwtService), middleware.RequireRole(string(models.RoleAdmin), string(models.RoleStaff)))
		{
			admin.GET("/visitors", visitorHandler.List)
			admin.PATCH("/visitors/:id/footfall", visitorHandler.ApproveFootfall)
			admin.GET("/emails", emailLogHandler.List)
			admin.POST("/emails/resend", emailLogHandler.Resend)
			admin.GET("/stats", statsHandler.Stats)
			if s3Store != nil {
				templateHandler := templates.NewHandler(s3Store, logger)
				admin.POST("/share-templates", templateHandler.Upload)
			}
		}
	}

	r.GET("/ws", middleware.JWT(jwtService), middleware.RequireRole(string(models.RoleAdmin), string(models.RoleStaff)), realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
