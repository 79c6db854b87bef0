// Package logger builds the zap loggers used across the service.
package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// level colors for console output
var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: "\033[36m",
	zapcore.InfoLevel:  "\033[32m",
	zapcore.WarnLevel:  "\033[33m",
	zapcore.ErrorLevel: "\033[31m",
	zapcore.FatalLevel: "\033[35m",
}

const resetColor = "\033[0m"

var shortLevels = map[zapcore.Level]string{
	zapcore.DebugLevel: "DBG",
	zapcore.InfoLevel:  "INF",
	zapcore.WarnLevel:  "WRN",
	zapcore.ErrorLevel: "ERR",
	zapcore.FatalLevel: "FAT",
}

// ParseLevel converts a config string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	levelEncoder := func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name, ok := shortLevels[l]
		if !ok {
			name = l.CapitalString()
		}
		if color {
			name = levelColors[l] + name + resetColor
		}
		enc.AppendString(name)
	}

	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New builds a logger writing to stdout. format is "console" or "json".
func New(level, format, service string) *zap.Logger {
	var encoder zapcore.Encoder
	if format == FormatJSON {
		cfg := encoderConfig(false)
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig(true))
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), ParseLevel(level))

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", service)),
	)
}

// Since is a small helper for latency fields.
func Since(start time.Time) zap.Field {
	return zap.Duration("latency", time.Since(start))
}
