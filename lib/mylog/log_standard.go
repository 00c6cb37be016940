package mylog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MarcGrol/courseshop/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

var base = newZap()

func newZap() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

type standardLogger struct {
	logger *zap.Logger
}

func newStandardLogger(componentName string) Logger {
	return standardLogger{
		logger: base.Named(componentName),
	}
}

func (l standardLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	fields := []zap.Field{}
	if traceLabel != "" {
		fields = append(fields, zap.String("aggregate", traceLabel))
	}
	if trace := mycontext.TraceFromContext(ctx); trace != "" {
		fields = append(fields, zap.String("trace", trace))
	}

	msg := fmt.Sprintf(format, a...)
	switch severity {
	case SeverityDebug:
		l.logger.Debug(msg, fields...)
	case SeverityWarn:
		l.logger.Warn(msg, fields...)
	case SeverityError:
		l.logger.Error(msg, fields...)
	case SeverityCritical:
		// zap's DPanic would panic in development mode
		l.logger.Error(msg, append(fields, zap.Bool("critical", true))...)
	default:
		l.logger.Info(msg, fields...)
	}
}
