package log

import (
	"log"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Setup builds the service logger: a production zap core wrapped with
// otelzap so log entries correlate with the active trace.
func Setup() *otelzap.Logger {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to setup logger: %v", err)
	}

	return otelzap.New(zapLogger,
		otelzap.WithMinLevel(zap.InfoLevel),
		otelzap.WithStackTrace(true),
	)
}
