package middleware

import (
	"context"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/request"
)

// SetCallerInContext is a helper for tests in other packages that need an
// authenticated request without signing a token.
func SetCallerInContext(ctx context.Context, caller *models.Caller) context.Context {
	return request.WithCaller(ctx, caller)
}
