package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/config"
	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/lock"
	"github.com/nidrosoft/rizzer-sub001/internal/services/ai"
	"github.com/nidrosoft/rizzer-sub001/internal/services/gifts"
	"github.com/nidrosoft/rizzer-sub001/internal/workers"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Repos groups the datastore repositories every entrypoint shares
type Repos struct {
	Profiles    *database.ProfileRepository
	Suggestions *database.SuggestionRepository
	Logs        *database.GenerationLogRepository
	Schedule    *database.ScheduleRepository
	Ratelimit   *database.RatelimitConfigRepository
}

// App is the generation pipeline wired against real infrastructure. The
// server, worker and CLI each build one and add their own surface on top.
type App struct {
	Cfg       *config.Config
	Log       *zap.Logger
	DB        *database.DB
	Redis     *redis.Client
	Repos     Repos
	Generator *gifts.Generator
	Batch     *workers.BatchRunner
}

// New connects to the datastore (and Redis when configured) and wires the
// generator and batch runner. Redis is optional: without it profile locking
// and rate limiting are off.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, debugMode bool) (*App, error) {
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("connected_to_database")

	a := &App{Cfg: cfg, Log: log, DB: db}
	a.Repos = wireRepos(db, cfg)

	var locker lock.Locker
	if cfg.RedisURL != "" {
		client, err := lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis_unavailable_locking_disabled", zap.Error(err))
		} else {
			a.Redis = client
			locker = lock.NewRedisLocker(client, lockTTL(cfg))
			log.Info("connected_to_redis")
		}
	}

	completion := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		Timeout:   cfg.AITimeout,
		DebugMode: debugMode,
	}, log)

	a.Generator = gifts.NewGenerator(gifts.Deps{
		Profiles:    a.Repos.Profiles,
		Completion:  completion,
		Suggestions: a.Repos.Suggestions,
		Logs:        a.Repos.Logs,
		Schedule:    a.Repos.Schedule,
		Locker:      locker,
	}, gifts.Config{
		MinQualityScore:  &cfg.MinQualityScore,
		ScheduleInterval: cfg.ScheduleInterval,
		QueryTimeout:     cfg.DBQueryTimeout,
		Model:            cfg.AIModel,
	}, log)

	a.Batch = workers.NewBatchRunner(a.Generator, a.Repos.Schedule, cfg.BatchDelay, cfg.BatchLimit, log)

	return a, nil
}

func wireRepos(db *database.DB, cfg *config.Config) Repos {
	return Repos{
		Profiles:    database.NewProfileRepository(db),
		Suggestions: database.NewSuggestionRepository(db, cfg.SuggestionTTL),
		Logs:        database.NewGenerationLogRepository(db),
		Schedule:    database.NewScheduleRepository(db),
		Ratelimit:   database.NewRatelimitConfigRepository(db),
	}
}

// lockTTL must outlive one attempt: the model call plus the gather and writes
func lockTTL(cfg *config.Config) time.Duration {
	ttl := cfg.AITimeout + 3*cfg.DBQueryTimeout
	if ttl < lock.DefaultTTL {
		ttl = lock.DefaultTTL
	}
	return ttl
}

// Close releases connections
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
