package config

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormZapLogger 把 GORM 日志转到 zap；SQL 只在 debug 级别输出
type gormZapLogger struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

func newGormLogger(logger *zap.Logger, slowThreshold time.Duration) *gormZapLogger {
	return &gormZapLogger{logger: logger.Named("gorm"), slowThreshold: slowThreshold}
}

func (l *gormZapLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *gormZapLogger) Info(_ context.Context, msg string, data ...any) {
	l.logger.Sugar().Debugf(msg, data...)
}

func (l *gormZapLogger) Warn(_ context.Context, msg string, data ...any) {
	l.logger.Sugar().Warnf(msg, data...)
}

func (l *gormZapLogger) Error(_ context.Context, msg string, data ...any) {
	l.logger.Sugar().Errorf(msg, data...)
}

func (l *gormZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		l.logger.Error("query failed", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed), zap.Error(err))
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		l.logger.Warn("slow query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case l.logger.Core().Enabled(zap.DebugLevel):
		sql, rows := fc()
		l.logger.Debug("query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}
