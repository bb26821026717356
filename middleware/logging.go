// Package middleware provides interceptors for catalystwan hosts.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/broady/catalystwan"
)

// LoggingInterceptor creates an interceptor that logs operation calls using slog.
// It logs the start and end of each call, including duration and error status.
func LoggingInterceptor(logger *slog.Logger) catalystwan.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req *catalystwan.Request, next catalystwan.HandlerFunc) (catalystwan.Response, error) {
		start := time.Now()
		operation := "unknown"
		if info, ok := catalystwan.OperationFromContext(ctx); ok {
			operation = info.Name
		}

		logger.InfoContext(ctx, "request started",
			slog.String("operation", operation),
			slog.String("method", req.Method),
			slog.String("url", req.URL),
		)

		res, err := next(ctx, req)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "request failed",
				slog.String("operation", operation),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "request completed",
				slog.String("operation", operation),
				slog.Duration("duration", duration),
			)
		}

		return res, err
	}
}
