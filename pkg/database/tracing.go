package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kssweets/sweetshop/pkg/database"

// slowQueries holds the process-wide slow query logging settings. Zero
// threshold means disabled.
var slowQueries struct {
	mu        sync.RWMutex
	threshold time.Duration
	logger    *slog.Logger
}

// SetSlowQueryLogging turns on slow query warnings for every traced
// operation that runs longer than threshold. Pass zero to disable.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	slowQueries.mu.Lock()
	defer slowQueries.mu.Unlock()
	slowQueries.threshold = threshold
	slowQueries.logger = logger
}

func slowQuerySettings() (time.Duration, *slog.Logger) {
	slowQueries.mu.RLock()
	defer slowQueries.mu.RUnlock()
	return slowQueries.threshold, slowQueries.logger
}

// TraceQuery opens a client span for a database operation. Call the
// returned function with the operation's error when it finishes:
//
//	ctx, end := database.TraceQuery(ctx, "CategoryRepository.List", listQuery)
//	rows, err := r.pool.Query(ctx, listQuery)
//	end(err)
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		threshold, logger := slowQuerySettings()
		if threshold <= 0 || logger == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= threshold {
			attrs := []any{
				slog.String("operation", operation),
				slog.String("statement", statement),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			logger.WarnContext(ctx, "slow query detected", attrs...)
		}
	}
}
