package logger

import (
	"context"
	"cowork/config"
	"cowork/shared/constant"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const (
	FieldReconciliation = "reconciliation"
	FieldRequestID      = "requestID"
	FieldTraceID        = "traceID"
)

func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	log.Logger = log.Output(output)
	log.Trace().Msg("Zerolog initialized.")
}

// SetOutput switches to structured JSON lines outside development.
func SetOutput(config *config.Config) {
	if config.Server.Env == constant.ServerEnvProduction {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// Reconciliation starts an error event flagged for manual follow-up by
// operators, tagged with the request and trace it happened in.
func Reconciliation(ctx context.Context) *zerolog.Event {
	event := log.Error().Bool(FieldReconciliation, true)

	if requestID, ok := ctx.Value(constant.ContextKeyRequestID).(string); ok && requestID != constant.Empty {
		event = event.Str(FieldRequestID, requestID)
	}

	if spanContext := trace.SpanContextFromContext(ctx); spanContext.HasTraceID() {
		event = event.Str(FieldTraceID, spanContext.TraceID().String())
	}

	return event
}

func SetLogLevel(config *config.Config) {
	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}
