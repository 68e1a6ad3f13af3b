// Command sharedoctor checks every share against the events table once and
// optionally repairs what it finds. It exits with status 1 when findings are
// left unrepaired.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/business/doctor"
	"github.com/SergeyKozhin/calnotes-backend/internal/config"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/database/events"
	"github.com/SergeyKozhin/calnotes-backend/internal/database/shares"
	"github.com/SergeyKozhin/calnotes-backend/internal/redis"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type refreshPublisher interface {
	Publish(ctx context.Context, userID, tab string) error
}

func main() {
	repair := flag.Bool("repair", false, "delete orphaned shares and refresh stale snapshots")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conf := zap.NewDevelopmentConfig()
	conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := conf.Build()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}
	sugar := logger.Sugar()

	db, err := database.NewPGX(ctx, config.PostgresURL())
	if err != nil {
		sugar.Fatalw("unable to initialize db", "err", err)
	}

	// without redis there are no streams in this process to refresh
	var publisher refreshPublisher = &refresh.LocalPublisher{Registry: refresh.NewRegistry()}
	if config.RedisURL() != "" {
		publisher = redis.NewPublisher(redis.NewRedisPool(sugar, config.RedisURL()))
	}

	service := doctor.NewService(db, sugar, events.NewRepository(), shares.NewRepository(), publisher)

	report, err := service.Run(ctx, *repair)
	if err != nil {
		sugar.Errorw("share doctor failed", "err", err)
		exit(logger, 2)
	}

	fmt.Printf("checked %d shares: %d orphaned, %d stale, %d malformed\n",
		report.Checked, len(report.Orphaned), len(report.Stale), len(report.Malformed))

	if !report.Clean() && (!*repair || len(report.Malformed) > 0) {
		exit(logger, 1)
	}
	exit(logger, 0)
}

func exit(logger *zap.Logger, code int) {
	_ = logger.Sync()
	closer.Exit(code)
}
