package main

import (
	"context"
	"log"
	"net/http"

	"github.com/SergeyKozhin/family-calendar-backend/internal/api"
	completions_service "github.com/SergeyKozhin/family-calendar-backend/internal/business/completions"
	events_service "github.com/SergeyKozhin/family-calendar-backend/internal/business/events"
	"github.com/SergeyKozhin/family-calendar-backend/internal/config"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database/category"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database/completions"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database/events"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database/exceptions"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database/family"
	"github.com/SergeyKozhin/family-calendar-backend/internal/notifications"
	"github.com/SergeyKozhin/family-calendar-backend/internal/pkg/fcm"
	"github.com/SergeyKozhin/family-calendar-backend/internal/redis"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	if err := config.Load(); err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	db, err := database.NewPGX(ctx, config.PostgresURL())
	if err != nil {
		log.Fatalf("unable to initializae db: %v", err)
	}

	if config.Migrate() {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("unable to migrate db: %v", err)
		}
	}

	redisPool := redis.NewRedisPool(config.RedisURL(), logger)
	xpLedger := redis.NewXPLedger(redisPool, config.XPLedgerKey())

	eventsRepository := events.NewRepository()
	exceptionsRepository := exceptions.NewRepository()
	completionsRepository := completions.NewRepository()
	familyRepository := family.NewRepository()
	categoryRepository := category.NewRepository()

	eventsService := events_service.NewService(
		db,
		logger,
		events_service.Limits{
			MaxWindow:      config.MaxWindow(),
			MaxOccurrences: config.MaxOccurrences(),
		},
		eventsRepository,
		exceptionsRepository,
		completionsRepository,
		familyRepository,
		categoryRepository,
	)

	var sender *notifications.Sender
	if config.PushNotifications() {
		fcmService, err := fcm.NewService(ctx)
		if err != nil {
			log.Fatalf("unable to initializae fcm service: %v", err)
		}
		sender = notifications.NewSender(db, logger, familyRepository, fcmService)
	}

	fallback, err := completions_service.ParseFallbackPolicy(config.CompletionFallback())
	if err != nil {
		log.Fatalf("unable to initializae completions service: %v", err)
	}

	completionsService := completions_service.NewService(
		db,
		logger,
		fallback,
		eventsService,
		completionsRepository,
		familyRepository,
		xpLedger,
		sender,
	)

	api, err := api.NewApi(
		logger,
		config.CalendarLocation(),
		db,
		familyRepository,
		categoryRepository,
		eventsService,
		completionsService,
	)
	if err != nil {
		logger.Fatalw("error initiating api", "err", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  api,
		ErrorLog: errLogger,
	}

	closer.Bind(func() {
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Errorw("server shutdown", "err", err)
		}
	})

	logger.Infow("Started server", "port", config.Port())
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
