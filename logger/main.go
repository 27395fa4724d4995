package logger

import (
	"context"
	"os"

	"github.com/hyperdxio/opentelemetry-go/otelzap"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConnectProps struct {
	Production bool
	// LoggerProvider receives a copy of every production entry when set.
	LoggerProvider *sdk.LoggerProvider
	ServiceName    string
}

type LogMiddleware struct {
	logger *zap.Logger
}

func Connect(args LoggerConnectProps) *LogMiddleware {
	var logger *zap.Logger

	if args.Production {
		cores := []zapcore.Core{
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(os.Stdout), zap.InfoLevel),
		}
		if args.LoggerProvider != nil {
			cores = append(cores, otelzap.NewOtelCore(args.LoggerProvider))
		}
		logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
		zap.ReplaceGlobals(logger)
		logger.Info("[Logger] Starting Logger with Prod Config", zap.Int("cores", len(cores)))
	} else {
		logger, _ = zap.NewDevelopment()
	}

	if args.ServiceName != "" {
		logger = logger.With(zap.String("service", args.ServiceName))
	}
	return &LogMiddleware{logger: logger}
}

// Nop returns a middleware that discards everything. Used by tests.
func Nop() *LogMiddleware {
	return &LogMiddleware{logger: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) *LogMiddleware {
	return &LogMiddleware{logger: l}
}

// Logger returns the base logger annotated with the trace and span of ctx, if any.
func (l *LogMiddleware) Logger(ctx context.Context) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return l.logger
	}

	return l.logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}

// Sync flushes buffered entries.
func (l *LogMiddleware) Sync() error {
	return l.logger.Sync()
}
