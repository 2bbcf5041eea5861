package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Noop27/lesson-store/infra/loki"
)

// New builds the service logger: JSON to stderr, tee'd into Loki when a
// push URL is configured. The returned cleanup flushes both sinks.
func New(lokiURL string) (*zap.Logger, func()) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	syncers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}
	lokiWriter := loki.NewWriter(lokiURL, "storefront")
	if lokiWriter != nil {
		syncers = append(syncers, zapcore.AddSync(lokiWriter))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), zap.InfoLevel)
	log := zap.New(core)

	cleanup := func() {
		_ = log.Sync()
		if lokiWriter != nil {
			_ = lokiWriter.Close()
		}
	}
	return log, cleanup
}
