package engine

import (
	"context"
	"log/slog"
)

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface
// Progress is logged at debug level; failures at warn.
func (lo *LoggingObserver) OnEvent(event Event) {
	attrs := []any{
		slog.String("event", string(event.Type)),
		slog.String("op_id", event.OpID),
		slog.Uint64("seq", event.Seq),
		slog.String("op", string(event.Op)),
		slog.String("table", event.Table),
	}

	switch data := event.Data.(type) {
	case IndexProgress:
		lo.logger.Debug("table_op", append(attrs,
			slog.String("index", data.Index),
			slog.Int("done", data.Done),
			slog.Int("total", data.Total),
		)...)
	case OpResult:
		attrs = append(attrs,
			slog.Int("rows", data.Rows),
			slog.Duration("elapsed", data.Elapsed),
		)
		if len(data.Rownums) > 0 {
			attrs = append(attrs, slog.Any("rownums", data.Rownums))
		}
		// reads are frequent; only mutations are worth an info line
		level := slog.LevelDebug
		if event.Op.Mutating() {
			level = slog.LevelInfo
		}
		lo.logger.Log(context.Background(), level, "table_op", attrs...)
	case error:
		lo.logger.Warn("table_op", append(attrs, slog.Any("error", data))...)
	default:
		lo.logger.Debug("table_op", attrs...)
	}
}
