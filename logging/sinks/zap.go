package sinks

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mech-arena/server/logging"
)

// Zap forwards events to a structured zap logger.
type Zap struct {
	logger *zap.Logger
}

func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger}
}

// NewZapFromConfig builds the production or development preset.
func NewZapFromConfig(cfg logging.ZapConfig) (*Zap, error) {
	build := zap.NewProduction
	if cfg.Development {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		return nil, err
	}
	return NewZap(logger), nil
}

func (s *Zap) Write(event logging.Event) error {
	fields := []zap.Field{
		zap.Uint64("tick", event.Tick),
		zap.String("actor", formatEntity(event.Actor)),
	}
	if !event.Time.IsZero() {
		fields = append(fields, zap.Time("time", event.Time))
	}
	if event.Category != "" {
		fields = append(fields, zap.String("category", event.Category))
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, formatEntity(target))
		}
		fields = append(fields, zap.Strings("targets", targets))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	if len(event.Extra) > 0 {
		fields = append(fields, zap.Any("extra", event.Extra))
	}
	if event.TraceID != "" {
		fields = append(fields, zap.String("traceId", event.TraceID))
	}
	if ce := s.logger.Check(zapLevel(event.Severity), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

// Close flushes the logger. Sync errors on terminals are ignored.
func (s *Zap) Close(context.Context) error {
	_ = s.logger.Sync()
	return nil
}

func zapLevel(sev logging.Severity) zapcore.Level {
	switch sev {
	case logging.SeverityDebug:
		return zapcore.DebugLevel
	case logging.SeverityWarn:
		return zapcore.WarnLevel
	case logging.SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
