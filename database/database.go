// Package database - Handles audit report storage backings
package database

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dephealth/dha-backend/model"
)

var logger = InitLogger() // setup the logger

// logLevel backs the shared logger so the level can change at runtime.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// Store backing names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendArango = "arangodb"
)

// ReportStore is the audit report persistence seam. Backings provide their
// own locking; callers never see storage internals.
type ReportStore interface {
	Put(ctx context.Context, report model.AuditReport) error
	Get(ctx context.Context, id string) (model.AuditReport, bool, error)
	List(ctx context.Context, limit int) ([]model.AuditSummary, error)
}

// NewStore selects a report store backing by name. The empty name selects
// the in-memory default.
func NewStore(backend string) (ReportStore, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendArango:
		return NewArangoStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Level = logLevel
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

// SetLogLevel adjusts the shared logging level at runtime. Unknown level
// names are ignored.
func SetLogLevel(level string) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	logLevel.SetLevel(parsed)
}
