package main

import (
	"alcyxob/gym-app/internal/api"
	"alcyxob/gym-app/internal/cache"
	"alcyxob/gym-app/internal/config"
	"alcyxob/gym-app/internal/jobs"
	"alcyxob/gym-app/internal/logging"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/repository/memory"
	"alcyxob/gym-app/internal/repository/mongo"
	"alcyxob/gym-app/internal/service"
	"alcyxob/gym-app/internal/storage"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// repositories is the storage backend chosen by database.driver.
type repositories struct {
	users         repository.UserRepository
	packages      repository.PackageRepository
	subscriptions repository.SubscriptionRepository
	sessions      repository.SessionRepository
	history       repository.WorkoutHistoryRepository
	reviews       repository.ReviewRepository
	templates     repository.TemplateRepository
	schedules     repository.WorkScheduleRepository
	meals         repository.MealRepository
	mealPlans     repository.MealPlanRepository
	visits        repository.VisitRepository
	uploads       repository.UploadRepository
}

// @title Gym Management API
// @version 1.0
// @description API for gym members, personal trainers and the owner: packages, registrations, sessions, nutrition and QR check-in.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)
	loc := cfg.Server.Location()
	log.WithFields(logrus.Fields{"driver": cfg.Database.Driver, "timezone": loc.String()}).Info("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage backends ---
	repos, closeDB, err := openRepositories(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("could not open database")
	}
	defer closeDB()

	appCache, closeCache, err := openCache(ctx, cfg.Redis, log)
	if err != nil {
		log.WithError(err).Fatal("could not connect to redis")
	}
	defer closeCache()

	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize S3 storage")
	}

	m := metrics.New()

	// --- Initialize Services ---
	authService := service.NewAuthService(repos.users, repos.uploads, fileStorage, cfg.JWT.Secret, cfg.JWT.Expiration, log)
	subscriptionService := service.NewSubscriptionService(repos.subscriptions, repos.packages, repos.users, m, loc, log)
	sessionService := service.NewSessionService(repos.sessions, repos.subscriptions, repos.schedules, repos.templates, repos.users, loc, log)
	checkinService := service.NewCheckinService(repos.visits, repos.subscriptions, appCache, m, cfg.QR.Secret, cfg.QR.TTL, cfg.QR.Size, loc, log)
	services := api.Services{
		Auth:          authService,
		Users:         service.NewUserService(repos.users, repos.reviews, log),
		Packages:      service.NewPackageService(repos.packages, appCache, log),
		Subscriptions: subscriptionService,
		Sessions:      sessionService,
		History:       service.NewHistoryService(repos.history, repos.sessions, repos.users, loc),
		Reviews:       service.NewReviewService(repos.reviews, repos.sessions, repos.users),
		Templates:     service.NewTemplateService(repos.templates),
		Schedules:     service.NewScheduleService(repos.schedules, repos.users),
		Meals:         service.NewMealService(repos.meals, repos.mealPlans, repos.sessions, repos.users, loc),
		Checkin:       checkinService,
		Uploads:       service.NewUploadService(repos.uploads, fileStorage),
		Dashboard:     service.NewDashboardService(repos.users, repos.subscriptions, repos.visits, repos.sessions, loc),
	}

	if cfg.Owner.Email != "" {
		if err := authService.EnsureOwner(ctx, cfg.Owner.FullName, cfg.Owner.Email, cfg.Owner.Password); err != nil {
			log.WithError(err).Fatal("could not create owner account")
		}
	}

	// --- Scheduled jobs ---
	runner := jobs.NewRunner(subscriptionService, sessionService, checkinService, m, log.WithField("component", "jobs"))
	if cfg.Jobs.Enabled {
		runner.RunAll(ctx)
		if err := runner.Start(cfg.Jobs, loc); err != nil {
			log.WithError(err).Fatal("could not schedule jobs")
		}
	}

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(&cfg, services, m, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		log.WithField("address", cfg.Server.Address).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	runner.Stop(ctxShutdown)
	log.Info("server exiting")
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig, log *logrus.Logger) (*repositories, func(), error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:         store.Users(),
			packages:      store.Packages(),
			subscriptions: store.Subscriptions(),
			sessions:      store.Sessions(),
			history:       store.History(),
			reviews:       store.Reviews(),
			templates:     store.Templates(),
			schedules:     store.Schedules(),
			meals:         store.Meals(),
			mealPlans:     store.MealPlans(),
			visits:        store.Visits(),
			uploads:       store.Uploads(),
		}, func() {}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.Name)
	log.WithField("database", cfg.Name).Info("database connection established")

	go func() {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, db, log)
	}()

	closeFn := func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(client); err != nil {
			log.WithError(err).Error("failed to disconnect MongoDB")
		}
	}
	return &repositories{
		users:         mongo.NewMongoUserRepository(db),
		packages:      mongo.NewMongoPackageRepository(db),
		subscriptions: mongo.NewMongoSubscriptionRepository(db),
		sessions:      mongo.NewMongoSessionRepository(db),
		history:       mongo.NewMongoHistoryRepository(db),
		reviews:       mongo.NewMongoReviewRepository(db),
		templates:     mongo.NewMongoTemplateRepository(db),
		schedules:     mongo.NewMongoScheduleRepository(db),
		meals:         mongo.NewMongoMealRepository(db),
		mealPlans:     mongo.NewMongoMealPlanRepository(db),
		visits:        mongo.NewMongoVisitRepository(db),
		uploads:       mongo.NewMongoUploadRepository(db),
	}, closeFn, nil
}

func openCache(ctx context.Context, cfg config.RedisConfig, log *logrus.Logger) (cache.Cache, func(), error) {
	if cfg.Addr == "" {
		log.Warn("redis not configured, using in-process cache")
		return cache.NewMemoryCache(), func() {}, nil
	}
	rdb, err := cache.ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("addr", cfg.Addr).Info("redis connection established")
	return cache.NewRedisCache(rdb), func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Error("failed to close redis")
		}
	}, nil
}
