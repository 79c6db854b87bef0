package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{FormatConsole, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			log := New("warn", format, "test")
			assert.NotNil(t, log)
			assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
			assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
		})
	}
}

func TestSince(t *testing.T) {
	f := Since(time.Now().Add(-time.Second))
	assert.Equal(t, "latency", f.Key)
	assert.Equal(t, zapcore.DurationType, f.Type)
	assert.GreaterOrEqual(t, time.Duration(f.Integer), time.Second)
}
