// Package middleware provides HTTP middleware for logging, metrics, rate
// limiting and tracing.
package middleware

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyUserID    ctxKey = "user_id"
)

// ctxHandler wraps a slog.Handler and enriches every record with request
// scoped attributes carried in the context.
type ctxHandler struct {
	slog.Handler
}

func (h ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if reqID, ok := ctx.Value(ctxKeyRequestID).(string); ok && reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}
	if userID, ok := ctx.Value(ctxKeyUserID).(uint); ok && userID != 0 {
		r.AddAttrs(slog.Uint64("user_id", uint64(userID)))
	}
	return h.Handler.Handle(ctx, r)
}

// InitLogger configures the global slog logger. JSON output in production,
// text elsewhere.
func InitLogger(env string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "development" || env == "test" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(ctxHandler{handler}))
}

// WithUserID stores the authenticated user id on the context for logging.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

// ContextMiddleware copies the fiber request id into the user context so
// downstream slog calls pick it up.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("requestid").(string)
		ctx := context.WithValue(c.UserContext(), ctxKeyRequestID, reqID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger logs one line per request with method, path, status and
// latency.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		}
		if err != nil {
			attrs = append(attrs, "error", err)
		}

		ctx := c.UserContext()
		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request completed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request completed", attrs...)
		default:
			slog.InfoContext(ctx, "request completed", attrs...)
		}
		return err
	}
}
