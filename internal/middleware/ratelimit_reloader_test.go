package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

type memRatelimitStore struct {
	mu     sync.Mutex
	rates  map[string]string
	getErr error
	sets   []models.RatelimitConfig
}

func (m *memRatelimitStore) Get(_ context.Context, scope string) (*models.RatelimitConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	rate, ok := m.rates[scope]
	if !ok {
		return nil, nil
	}
	return &models.RatelimitConfig{Scope: scope, Rate: rate}, nil
}

func (m *memRatelimitStore) Set(_ context.Context, c *models.RatelimitConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rates == nil {
		m.rates = map[string]string{}
	}
	m.rates[c.Scope] = c.Rate
	m.sets = append(m.sets, *c)
	return nil
}

var _ RatelimitConfigStore = (*memRatelimitStore)(nil)

func hit(h http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/generate-gift-suggestions", nil)
	req.RemoteAddr = ip
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitReloader_EnforcesStoredRate(t *testing.T) {
	t.Parallel()

	repo := &memRatelimitStore{rates: map[string]string{models.RatelimitScopeGenerate: "2-M"}}
	r := NewRateLimitReloader(memory.NewStore(), repo, models.RatelimitScopeGenerate, "100-M", zap.NewNop(), 0)
	h := r.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if r.Rate() != "2-M" {
		t.Fatalf("Rate() = %q, want 2-M", r.Rate())
	}
	for i := 0; i < 2; i++ {
		if code := hit(h, "10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, code)
		}
	}
	if code := hit(h, "10.0.0.1:1000"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := hit(h, "10.0.0.2:1000"); code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", code)
	}
}

func TestRateLimitReloader_SeedsDefault(t *testing.T) {
	t.Parallel()

	repo := &memRatelimitStore{}
	r := NewRateLimitReloader(memory.NewStore(), repo, models.RatelimitScopeGenerate, "", zap.NewNop(), 0)
	r.Middleware()(http.NotFoundHandler())

	if r.Rate() != defaultRatelimitRate {
		t.Errorf("Rate() = %q, want %q", r.Rate(), defaultRatelimitRate)
	}
	if len(repo.sets) != 1 || repo.sets[0].Scope != models.RatelimitScopeGenerate || repo.sets[0].Rate != defaultRatelimitRate {
		t.Errorf("seeded = %+v", repo.sets)
	}
}

func TestRateLimitReloader_FallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		repo *memRatelimitStore
	}{
		{name: "store error", repo: &memRatelimitStore{getErr: errors.New("db down")}},
		{name: "unparseable stored rate", repo: &memRatelimitStore{rates: map[string]string{"generate": "lots"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewRateLimitReloader(memory.NewStore(), tt.repo, "generate", "7-M", zap.NewNop(), 0)
			r.Middleware()(http.NotFoundHandler())
			if r.Rate() != "7-M" {
				t.Errorf("Rate() = %q, want 7-M", r.Rate())
			}
			if len(tt.repo.sets) != 0 {
				t.Errorf("unexpected seed writes: %+v", tt.repo.sets)
			}
		})
	}
}

func TestRateLimitReloader_Reload(t *testing.T) {
	t.Parallel()

	repo := &memRatelimitStore{rates: map[string]string{"generate": "1-M"}}
	r := NewRateLimitReloader(memory.NewStore(), repo, "generate", "", zap.NewNop(), 0)
	h := r.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	hit(h, "10.0.0.9:1")
	if code := hit(h, "10.0.0.9:1"); code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 at 1-M", code)
	}

	_ = repo.Set(context.Background(), &models.RatelimitConfig{Scope: "generate", Rate: "50-M"})
	r.load(context.Background())
	if r.Rate() != "50-M" {
		t.Fatalf("Rate() after reload = %q, want 50-M", r.Rate())
	}
	if code := hit(h, "10.0.0.9:1"); code != http.StatusOK {
		t.Errorf("status after reload = %d, want 200", code)
	}
}
