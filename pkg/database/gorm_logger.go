package database

import (
	"time"

	applogger "github.com/Payphone-Digital/customer-service/pkg/logger"
	gormlogger "gorm.io/gorm/logger"
)

type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	applogger.GetSugarLogger().Warnf(format, args...)
}

// NewGormLogger routes gorm's slow query and error output through zap.
// Record-not-found is expected on lookups and is not logged.
func NewGormLogger() gormlogger.Interface {
	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
