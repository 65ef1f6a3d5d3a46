package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/request"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.uber.org/zap"
)

const defaultRatelimitRate = "10-M"

// RatelimitConfigStore reads and seeds stored limiter rates
type RatelimitConfigStore interface {
	Get(ctx context.Context, scope string) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// RateLimitReloader wraps ulule/limiter and periodically reloads the rate
// for one scope from the database.
type RateLimitReloader struct {
	store       limiter.Store
	repo        RatelimitConfigStore
	scope       string
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	initOnce    sync.Once
	mu          sync.RWMutex
	current     *stdlibmw.Middleware
	rate        string
}

// NewRateLimitReloader creates a rate limit middleware for scope backed by
// store (Redis in production). The rate is loaded from repo and hot-reloaded.
func NewRateLimitReloader(store limiter.Store, repo RatelimitConfigStore, scope, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	if scope == "" {
		scope = models.RatelimitScopeDefault
	}
	return &RateLimitReloader{
		store:       store,
		repo:        repo,
		scope:       scope,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
}

// Middleware returns a middleware that wraps next with rate limiting and
// hot-reload. The first call loads the rate. mux applies middleware on every
// request, so the returned func only looks up the current limiter.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	r.initOnce.Do(func() { r.load(context.Background()) })
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			mw := r.current
			r.mu.RUnlock()
			if mw == nil {
				next.ServeHTTP(w, req)
				return
			}
			mw.Handler(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *RateLimitReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

// Rate returns the formatted rate currently enforced
func (r *RateLimitReloader) Rate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	rateStr := r.defaultRate
	cfg, err := r.repo.Get(ctx, r.scope)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_using_default",
			zap.Error(err),
			zap.String("scope", r.scope),
			zap.String("default_rate", r.defaultRate),
		)
	case cfg != nil && cfg.Rate != "":
		rateStr = cfg.Rate
	default:
		// Seed the default so operators can see and edit it
		if err := r.repo.Set(ctx, &models.RatelimitConfig{Scope: r.scope, Rate: r.defaultRate}); err != nil {
			r.log.Error("failed_to_save_default_ratelimit_config",
				zap.Error(err),
				zap.String("scope", r.scope),
			)
		}
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rateStr = r.defaultRate
		rate, err = limiter.NewRateFromFormatted(rateStr)
		if err != nil {
			r.log.Error("failed_to_parse_default_rate_limit", zap.Error(err))
			return
		}
	}

	r.mu.RLock()
	unchanged := r.current != nil && r.rate == rateStr
	r.mu.RUnlock()
	if unchanged {
		return
	}

	instance := limiter.New(r.store, rate)
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(func(req *http.Request) string {
			return r.scope + ":" + request.RateKey(req)
		}),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded", r.log)
		}),
	)

	r.mu.Lock()
	r.current = mw
	r.rate = rateStr
	r.mu.Unlock()

	r.log.Info("ratelimit_loaded", zap.String("scope", r.scope), zap.String("rate", rateStr))
}
