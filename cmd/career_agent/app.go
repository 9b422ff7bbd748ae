package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/careerbase/internal/bulkops"
	"github.com/jonathan/careerbase/internal/config"
	"github.com/jonathan/careerbase/internal/db"
	"github.com/jonathan/careerbase/internal/dedupe"
	"github.com/jonathan/careerbase/internal/embedding"
	"github.com/jonathan/careerbase/internal/logging"
	"github.com/jonathan/careerbase/internal/metrics"
	"github.com/jonathan/careerbase/internal/similarity"
	"github.com/jonathan/careerbase/internal/store"
)

// app bundles the wired collaborators shared by the commands.
type app struct {
	cfg      *config.Config
	logger   logging.Logger
	database *db.DB
	records  store.RecordStore
	chunks   store.ChunkStore
	embedder embedding.Embedder
	scorer   *similarity.Scorer
	detector *dedupe.Detector
	engine   *bulkops.Engine
	metrics  *metrics.Metrics

	gemini *embedding.GeminiEmbedder
	redis  *redis.Client
}

// newApp wires the application from config, environment, and flags. The
// database is required; Redis and the embedder are optional.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{
		Level:      level,
		Service:    "career_agent",
		JSONFormat: cfg.LogJSON,
	})

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		records:  database.Records(),
		chunks:   database.Chunks(),
		metrics:  metrics.New(),
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := embedding.NewGemini(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.gemini = gemini
		a.embedder = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, content similarity and embedding refresh disabled")
	}

	a.scorer = similarity.New(similarity.Config{
		Weights: similarity.Weights{
			Company: cfg.CompanyWeight,
			Title:   cfg.TitleWeight,
			Dates:   cfg.DatesWeight,
			Skills:  cfg.SkillsWeight,
			Content: cfg.ContentWeight,
		},
		Embedder: a.embedder,
		Logger:   logger,
	})
	a.detector = dedupe.New(dedupe.Config{
		Scorer:      a.scorer,
		Chunks:      a.chunks,
		Logger:      logger,
		Parallelism: cfg.ScanParallelism,
	})

	retention := time.Duration(cfg.RetentionMinutes) * time.Minute
	var ops bulkops.OperationStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)
		ops = bulkops.NewRedisOperationStore(a.redis, retention)
	} else {
		ops = bulkops.NewMemoryOperationStore(retention)
	}

	a.engine = bulkops.New(bulkops.Config{
		Records:    a.records,
		Chunks:     a.chunks,
		Embedder:   a.embedder,
		Operations: ops,
		Logger:     logger,
		Metrics:    a.metrics,
	})

	return a, nil
}

// Close releases the app's connections.
func (a *app) Close() {
	if a.gemini != nil {
		if err := a.gemini.Close(); err != nil {
			a.logger.Warn("failed to close embedding client", logging.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", logging.Err(err))
		}
	}
	if a.database != nil {
		a.database.Close()
	}
}
