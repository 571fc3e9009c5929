// Package app wires configuration, adapters and services into one
// graph shared by the HTTP server and the trainer CLI.
package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	natsgo "github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"pos-nfc-api/internal/adapters/secondary/artifacts"
	"pos-nfc-api/internal/adapters/secondary/nats"
	"pos-nfc-api/internal/adapters/secondary/postgres"
	"pos-nfc-api/internal/adapters/secondary/redis"
	"pos-nfc-api/internal/classifier"
	"pos-nfc-api/internal/config"
	"pos-nfc-api/internal/core/ports/output"
	"pos-nfc-api/internal/core/services"
	"pos-nfc-api/internal/metrics"
)

type App struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Metrics *metrics.Metrics

	Cards  *services.CardService
	Logs   *services.APDULogService
	Models *services.APDUModelService

	redis *goredis.Client
	nc    *natsgo.Conn
}

// InitLogger applies the configured level and format to the global logger.
func InitLogger(cfg config.LoggerConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// New connects to the database and the optional Redis and NATS backends.
// Redis and NATS failures degrade to no-op implementations.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.Pool = pool
	log.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			a.Close()
			return nil, err
		}
		log.Info("database schema up to date")
	}

	store, err := artifacts.New(ctx, cfg.Artifacts)
	if err != nil {
		a.Close()
		return nil, err
	}

	var cache ports.CardCache
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warnf("redis init failed (continuing without card cache): %v", err)
		} else {
			a.redis = client
			cache = redis.NewCardCache(client)
			log.Info("redis card cache enabled")
		}
	} else {
		log.Info("redis card cache disabled")
	}

	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		nc, err := nats.Connect(cfg.NATS)
		if err != nil {
			log.Warnf("nats init failed (continuing without events): %v", err)
		} else {
			a.nc = nc
			events = nats.NewPublisher(nc, cfg.NATS.SubjectPrefix)
			log.Info("nats event publisher enabled")
		}
	} else {
		log.Info("nats event publisher disabled")
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	cardRepo := postgres.NewCardRepository(pool)
	logRepo := postgres.NewAPDULogRepository(pool)
	modelRepo := postgres.NewAPDUModelRepository(pool)

	a.Cards = services.NewCardService(cardRepo, cache, events, cfg.Redis.TTL)
	a.Logs = services.NewAPDULogService(logRepo, events, a.Metrics)
	a.Models = services.NewAPDUModelService(modelRepo, logRepo, store, events, a.Metrics,
		classifier.ForestParams{
			Trees:    cfg.Classifier.Trees,
			MaxDepth: cfg.Classifier.MaxDepth,
			Seed:     cfg.Classifier.Seed,
		},
		cfg.Classifier.MinSamples,
	)

	return a, nil
}

// Close releases every connection New opened.
func (a *App) Close() {
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			log.WithError(err).Warn("nats drain failed")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Warn("redis close failed")
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
