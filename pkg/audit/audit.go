package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Action is what happened to an intake record
type Action string

const (
	ActionSubmitted     Action = "record_submitted"
	ActionReplaced      Action = "record_replaced"
	ActionStatusChanged Action = "status_changed"
	ActionAccessDenied  Action = "access_denied"
	ActionRateLimited   Action = "rate_limited"

	// ActionFallbackDisclosed marks a record handed out by the fuzzy identity fallback
	ActionFallbackDisclosed Action = "fallback_disclosed"
)

// Event is one entry of the HR audit trail
type Event struct {
	Timestamp time.Time
	Action    Action
	Kind      string // origin table
	RecordID  string
	ActorID   string
	ActorRole string
	OldStatus string
	NewStatus string
	Email     string // hashed before logging
	Reason    string
}

// Logger writes the audit trail as structured JSON through zap.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// New builds a production zap logger writing to stdout.
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build(zap.AddCaller())
	if err != nil {
		zl, _ = zap.NewProduction()
	}
	return &Logger{zapLogger: zl, serviceName: serviceName, environment: environment}
}

// NewWithZap wraps an existing zap logger (zap.NewNop() in tests).
func NewWithZap(zl *zap.Logger) *Logger {
	return &Logger{zapLogger: zl, serviceName: "hospital-recruitment", environment: "test"}
}

// Record writes ev. A nil Logger drops it.
func (l *Logger) Record(ctx context.Context, ev Event) {
	if l == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	level := zapcore.InfoLevel
	switch ev.Action {
	case ActionAccessDenied, ActionRateLimited:
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("action", string(ev.Action)),
		zap.Time("at", ev.Timestamp),
	}
	if ev.Kind != "" {
		fields = append(fields, zap.String("kind", ev.Kind))
	}
	if ev.RecordID != "" {
		fields = append(fields, zap.String("record_id", ev.RecordID))
	}
	if ev.ActorID != "" {
		fields = append(fields, zap.String("actor_id", ev.ActorID))
	}
	if ev.ActorRole != "" {
		fields = append(fields, zap.String("actor_role", ev.ActorRole))
	}
	if ev.OldStatus != "" || ev.NewStatus != "" {
		fields = append(fields, zap.String("old_status", ev.OldStatus), zap.String("new_status", ev.NewStatus))
	}
	if ev.Email != "" {
		fields = append(fields, zap.String("email_hash", HashValue(ev.Email)))
	}
	if ev.Reason != "" {
		fields = append(fields, zap.String("reason", ev.Reason))
	}

	l.zapLogger.Log(level, string(ev.Action), fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zapLogger.Sync()
}

// HashValue creates a short SHA256 digest of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
