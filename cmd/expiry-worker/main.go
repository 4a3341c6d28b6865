package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rshashank20/foodexpiry-tracker/internal/config"
	"github.com/rshashank20/foodexpiry-tracker/internal/db"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/kv"
	"github.com/rshashank20/foodexpiry-tracker/internal/notify"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/metrics"
	"github.com/rshashank20/foodexpiry-tracker/internal/reminder"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		panic(err)
	}
	logging.SetDefault(log)

	if err := cfg.Validate(config.RequiredWorker); err != nil {
		log.Fatal("invalid configuration", logging.Err(err))
	}
	loc := cfg.Location()

	pgDB, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, log.Named("db"))
	if err != nil {
		log.Fatal("postgres init failed", logging.Err(err))
	}
	defer pgDB.Close()

	m := metrics.New(prometheus.NewRegistry())
	items := inventory.NewService(inventory.NewPostgresRepository(pgDB), nil, nil,
		inventory.WithLocation(loc),
		inventory.WithLogger(log.Named("inventory")),
	)

	opts := []reminder.Option{
		reminder.WithInterval(cfg.Sweep.Interval),
		reminder.WithDaysAhead(cfg.Sweep.DaysAhead),
		reminder.WithLocation(loc),
		reminder.WithLogger(log.Named("sweeper")),
		reminder.WithMetrics(m),
	}

	// Inbox refresh is optional for the worker: without Redis it only logs.
	if cfg.RedisURL != "" {
		store, err := kv.NewRedisStore(ctx, cfg.RedisURL, kv.WithPrefix("pantry:"))
		if err != nil {
			log.Fatal("redis init failed", logging.Err(err))
		}
		defer store.Close()

		inbox := notify.NewInbox(store, notify.WithInboxLogger(log.Named("inbox")))
		generator := notify.NewGenerator(items, notify.NewSettingsStore(store), inbox,
			notify.WithLocation(loc),
			notify.WithLogger(log.Named("notify")),
			notify.WithMetrics(m),
		)
		opts = append(opts, reminder.WithNotifier(generator))
	}

	sweeper := reminder.NewSweeper(items, opts...)
	if err := sweeper.Run(ctx); err != nil {
		log.Fatal("expiry worker crashed", logging.Err(err))
	}
}
