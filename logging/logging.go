package logging

import (
	"log"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger = zap.SugaredLogger

var globalLogger *Logger

// Setup builds the global logger. level may be empty, which keeps zap's
// production default (info).
func Setup(level string) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(
		time.RFC3339,
	)

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			log.Fatalf("error configuring logger: %s", err)
		}
		loggerConfig.Level.SetLevel(parsed)
	}

	l, err := loggerConfig.Build()
	if err != nil {
		log.Fatal(err)
	}

	globalLogger = l.Sugar()
}

// GetLogger returns the global logger, building a default one if Setup has
// not run (tests and tooling).
func GetLogger() *Logger {
	if globalLogger == nil {
		Setup("")
	}
	return globalLogger
}
