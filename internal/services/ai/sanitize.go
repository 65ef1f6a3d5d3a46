package ai

import (
	"context"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/logger"
)

type contextKey string

const (
	profileIDContextKey contextKey = "profile_id"
	batchIDContextKey   contextKey = "generation_batch_id"
)

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// RedactedValue replaces sensitive data
	RedactedValue = "[REDACTED]"
)

// WithProfileID tags ctx so provider logs can name the profile
func WithProfileID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, profileIDContextKey, id)
}

// WithBatchID tags ctx with the generation batch being produced
func WithBatchID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, batchIDContextKey, id)
}

func uuidFromContext(ctx context.Context, key contextKey) string {
	if id, ok := ctx.Value(key).(uuid.UUID); ok {
		return id.String()
	}
	return ""
}

// ProfileIDFromContext returns the tagged profile id, or ""
func ProfileIDFromContext(ctx context.Context) string {
	return uuidFromContext(ctx, profileIDContextKey)
}

// BatchIDFromContext returns the tagged batch id, or ""
func BatchIDFromContext(ctx context.Context) string {
	return uuidFromContext(ctx, batchIDContextKey)
}


// SanitizeAPIKey keeps the first and last four characters of a key
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizePrompt creates a log-safe preview of a prompt. fullLog raises the
// cap to the debug content limit.
func SanitizePrompt(prompt string, fullLog bool) string {
	if fullLog {
		return logger.SanitizeDebugContent(prompt)
	}
	return logger.SanitizeString(prompt, MaxPreviewLength)
}

// SanitizeResponse creates a log-safe preview of model output
func SanitizeResponse(response string, fullLog bool) string {
	return SanitizePrompt(response, fullLog)
}
