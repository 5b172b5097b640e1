package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/multistrip/internal/api/models"
	"github.com/smazurov/multistrip/internal/events"
	"github.com/smazurov/multistrip/internal/logging"
)

// registerLogRoutes registers the log endpoints.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent Logs",
		Description: "Get the most recent entries of the in-memory log buffer",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *models.LogsRequest) (*models.LogsResponse, error) {
		var entries []logging.LogEntry
		if buffer := logging.GetBuffer(); buffer != nil {
			entries = buffer.ReadAll()
		}

		data := models.LogsData{Entries: []models.LogEntryData{}}
		for _, e := range entries {
			if input.Module != "" && e.Module != input.Module {
				continue
			}
			data.Entries = append(data.Entries, logEntryToAPI(e))
		}
		if input.Limit > 0 && len(data.Entries) > input.Limit {
			data.Entries = data.Entries[len(data.Entries)-input.Limit:]
		}
		data.Count = len(data.Entries)
		return &models.LogsResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-log-level",
		Method:      http.MethodPut,
		Path:        "/api/logs/{module}/level",
		Summary:     "Set Log Level",
		Description: "Change one module's log level until the next restart",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *models.LogLevelRequest) (*models.LogLevelResponse, error) {
		if !logging.SetLevel(input.Module, input.Body.Level) {
			return nil, huma.Error422UnprocessableEntity("Unknown log level " + input.Body.Level)
		}
		s.logger.Info("Log level changed", "target", input.Module, "level", input.Body.Level)
		return &models.LogLevelResponse{
			Body: models.LogLevelData{Module: input.Module, Level: input.Body.Level},
		}, nil
	})

	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Real-time log streaming via Server-Sent Events. Sends buffered logs first, then streams new logs.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Subscribe before replaying so nothing logged in between is lost.
		eventCh := make(chan any, 100)
		unsubscribe := events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		if buffer := logging.GetBuffer(); buffer != nil {
			for _, entry := range buffer.ReadAll() {
				if err := send.Data(LogEvent(entry)); err != nil {
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

// LogEvent converts a buffered log entry to the event streamed to clients.
func LogEvent(entry logging.LogEntry) events.LogEntryEvent {
	return events.LogEntryEvent{
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Attributes: entry.Attributes,
	}
}

func logEntryToAPI(entry logging.LogEntry) models.LogEntryData {
	return models.LogEntryData{
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Attributes: entry.Attributes,
	}
}
