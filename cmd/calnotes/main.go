package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/SergeyKozhin/calnotes-backend/internal/api"
	"github.com/SergeyKozhin/calnotes-backend/internal/business/doctor"
	events_service "github.com/SergeyKozhin/calnotes-backend/internal/business/events"
	"github.com/SergeyKozhin/calnotes-backend/internal/business/sharing"
	"github.com/SergeyKozhin/calnotes-backend/internal/config"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/database/events"
	"github.com/SergeyKozhin/calnotes-backend/internal/database/shares"
	"github.com/SergeyKozhin/calnotes-backend/internal/database/user"
	"github.com/SergeyKozhin/calnotes-backend/internal/notifications"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/fcm"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/jwt"
	"github.com/SergeyKozhin/calnotes-backend/internal/redis"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"github.com/robfig/cron/v3"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type refreshPublisher interface {
	Publish(ctx context.Context, userID, tab string) error
}

type pushService interface {
	SendMessage(ctx context.Context, m *fcm.Message) error
	SendMessageBatch(ctx context.Context, ms []*fcm.Message) ([]string, error)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	db, err := database.NewPGX(ctx, config.PostgresURL())
	if err != nil {
		logger.Fatalw("unable to initialize db", "err", err)
	}

	registry := refresh.NewRegistry()

	var publisher refreshPublisher = &refresh.LocalPublisher{Registry: registry}
	if config.RedisURL() != "" {
		redisPool := redis.NewRedisPool(logger, config.RedisURL())
		publisher = redis.NewPublisher(redisPool)

		subscriber := redis.NewSubscriber(redisPool, registry, logger)
		go subscriber.Run(ctx)
	}

	var push pushService = &notifications.LogPusher{Logger: logger}
	if config.PushEnabled() {
		fcmService, err := fcm.NewService(ctx)
		if err != nil {
			logger.Fatalw("unable to initialize fcm service", "err", err)
		}
		push = fcmService
	}

	profilesRepository := user.NewRepository()
	eventsRepository := events.NewRepository()
	sharesRepository := shares.NewRepository()

	sender := notifications.NewSender(db, logger, profilesRepository, push)

	eventsService := events_service.NewService(db, logger, eventsRepository, sharesRepository, publisher, sender, events_service.Options{
		Horizon:      config.ExpansionHorizon(),
		MaxInstances: config.MaxInstances(),
	})
	sharingService := sharing.NewService(db, logger, eventsRepository, sharesRepository, profilesRepository, publisher, sender)
	doctorService := doctor.NewService(db, logger, eventsRepository, sharesRepository, publisher)

	scheduler := cron.New()
	if err := doctorService.Schedule(scheduler, config.DoctorSchedule(), config.DoctorRepair()); err != nil {
		logger.Fatalw("unable to schedule share doctor", "err", err)
	}
	scheduler.Start()
	closer.Bind(func() {
		<-scheduler.Stop().Done()
	})

	handler, err := api.NewApi(
		logger,
		jwt.NewManager(config.JwtSecret()),
		registry,
		db,
		profilesRepository,
		eventsService,
		sharingService,
	)
	if err != nil {
		logger.Fatalw("unable to initialize api", "err", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  handler,
		ErrorLog: errLogger,
	}

	closer.Bind(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("server shutdown", "err", err)
		}
	})

	go func() {
		logger.Infow("Started server", "port", config.Port())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("server error", "err", err)
			closer.Exit(1)
		}
	}()

	closer.Hold()
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
