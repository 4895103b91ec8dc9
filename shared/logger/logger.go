package sharedlogger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var log *zap.Logger

func Init() {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	log = l
}

func L() *zap.Logger {
	return log
}

// WithSearch tags the trace-aware logger with the search id so one search can
// be followed across both services.
func WithSearch(ctx context.Context, searchID string) *zap.Logger {
	return WithTrace(ctx).With(zap.String("search_id", searchID))
}

func WithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
