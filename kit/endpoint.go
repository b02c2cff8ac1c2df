// Package kit carries the transport-agnostic endpoint plumbing: every MCP
// tool operation (discover, fill, session status) is an Endpoint behind a
// shared middleware chain. The HTTP surface covers the same concerns with
// chi middleware instead.
package kit

import (
	"context"
	"log/slog"
	"time"
)

// Endpoint is one logical operation, independent of transport.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain composes middleware left to right: the first argument is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Logging logs each call with its transport, request ID, and latency.
func Logging(logger *slog.Logger, op string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{
				"op", op,
				"transport", GetTransport(ctx),
				"request_id", GetRequestID(ctx),
				"elapsed", time.Since(start).Round(time.Millisecond),
			}
			if err != nil {
				logger.Error("endpoint failed", append(attrs, "error", err)...)
			} else {
				logger.Info("endpoint ok", attrs...)
			}
			return resp, err
		}
	}
}
