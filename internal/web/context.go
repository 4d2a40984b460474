package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/flatbridge/internal/core"
	"github.com/JonMunkholm/flatbridge/internal/web/middleware"
)

// withRequestMetadata adds the client IP to ctx for job logging.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithIPAddress(ctx, middleware.ClientIP(r))
}
