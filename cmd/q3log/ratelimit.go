package main

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// rateLimitedHandler drops warnings beyond the limiter's budget so a server
// spewing garbage cannot flood the terminal while following. Errors and
// other levels always pass.
type rateLimitedHandler struct {
	slog.Handler
	limiter *rate.Limiter
	dropped *atomic.Int64
}

func newRateLimitedHandler(h slog.Handler, perSecond float64, burst int) *rateLimitedHandler {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &rateLimitedHandler{
		Handler: h,
		limiter: rate.NewLimiter(limit, burst),
		dropped: new(atomic.Int64),
	}
}

func (h *rateLimitedHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelWarn && !h.limiter.Allow() {
		h.dropped.Add(1)
		return nil
	}
	return h.Handler.Handle(ctx, r)
}

func (h *rateLimitedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &rateLimitedHandler{Handler: h.Handler.WithAttrs(attrs), limiter: h.limiter, dropped: h.dropped}
}

func (h *rateLimitedHandler) WithGroup(name string) slog.Handler {
	return &rateLimitedHandler{Handler: h.Handler.WithGroup(name), limiter: h.limiter, dropped: h.dropped}
}

// Dropped returns the number of warnings suppressed so far.
func (h *rateLimitedHandler) Dropped() int64 {
	return h.dropped.Load()
}
