package emit

import (
	"context"
	"log/slog"
)

// LogEmitter writes each event as a structured log/slog record, using the
// same logi-initialized handler the rest of the runtime logs through (see
// flow/logging and rakunlabs-at's internal/service/workflow/scheduler.go,
// which logs node lifecycle events via logi.Ctx(ctx) the same way).
type LogEmitter struct {
	logger *slog.Logger
}

func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (l *LogEmitter) Emit(event Event) {
	level := slog.LevelInfo
	if event.Kind == NodeErrored || event.Kind == RunCancelled {
		level = slog.LevelWarn
	}
	attrs := make([]any, 0, 8+len(event.Meta)*2)
	attrs = append(attrs,
		"run_id", event.RunID,
		"node_id", event.NodeID,
		"kind", string(event.Kind),
		"time", event.Time,
	)
	for k, v := range event.Meta {
		attrs = append(attrs, k, v)
	}
	l.logger.Log(context.Background(), level, string(event.Kind), attrs...)
}
