package models

import "time"

// Rate limit scopes. Each scope is limited independently per client IP.
const (
	RatelimitScopeGenerate = "generate"
	RatelimitScopeDefault  = "default"
)

// RatelimitConfig is a stored limiter rate for one scope, in ulule
// formatted form ("5-S", "100-M", "1000-H").
type RatelimitConfig struct {
	Scope     string    `json:"scope"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
