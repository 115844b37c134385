package api

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

// GetRequestID returns the chi request id, or "" outside a RequestID
// middleware chain.
func GetRequestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// requestLogger returns the default logger annotated with the request id.
func requestLogger(ctx context.Context) *slog.Logger {
	return slog.Default().With(
		"component", "api",
		"request_id", GetRequestID(ctx),
	)
}
