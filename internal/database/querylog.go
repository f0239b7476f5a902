package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// queryLogger sends GORM output to slog so SQL logs carry request, user and
// trace ids from the context. Not-found and duplicate-key errors are expected
// outcomes of lookups and reaction toggles and are not logged.
type queryLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newQueryLogger(l *slog.Logger) *queryLogger {
	return &queryLogger{log: l, level: logger.Warn, slow: slowQueryThreshold}
}

func (q *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *q
	cp.level = level
	return &cp
}

func (q *queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= logger.Info {
		q.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= logger.Warn {
		q.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= logger.Error {
		q.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	expected := errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey)

	var (
		level slog.Level
		msg   string
	)
	switch {
	case err != nil && !expected && q.level >= logger.Error:
		level, msg = slog.LevelError, "query failed"
	case q.slow > 0 && elapsed > q.slow && q.level >= logger.Warn:
		level, msg = slog.LevelWarn, "slow query"
	case q.level >= logger.Info:
		level, msg = slog.LevelInfo, "query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if err != nil && !expected {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	q.log.LogAttrs(ctx, level, msg, attrs...)
}
