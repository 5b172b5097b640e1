package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// logRequest logs every API call once its handler returns.
func (s *Server) logRequest(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	status := ctx.Status()
	attrs := []slog.Attr{
		slog.String("method", ctx.Method()),
		slog.String("path", ctx.URL().Path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
		slog.String("remote_addr", ctx.RemoteAddr()),
	}
	op := ctx.Operation()
	if op != nil {
		attrs = append(attrs, slog.String("operation", op.OperationID))
	}
	s.httpLogger.LogAttrs(ctx.Context(), requestLevel(ctx.Method(), status), "HTTP request completed", attrs...)
}

// requestLevel keeps reads at debug. Dashboards poll the bus and channel
// lists, and every record lands in the log buffer served by /api/logs.
func requestLevel(method string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case method == http.MethodGet:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
