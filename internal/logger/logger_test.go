package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := parseLogLevel(tc.input)
			assert.Equal(t, tc.expected, level)
			assert.Equal(t, tc.wantErr, err != nil)
		})
	}
}

func TestNew_UnknownLevelFallsBack(t *testing.T) {
	l, err := New("verbose")
	assert.NoError(t, err)
	assert.NotNil(t, l)
	l.Infof("logger ready")
	assert.NoError(t, l.Sync())
}

func TestMockLogger_Records(t *testing.T) {
	m := NewMockLogger()
	m.Infof("hello %s", "world")
	m.Warnf("careful")
	m.Errorf("failed: %d", 3)

	assert.Equal(t, []string{"hello world"}, m.InfoMessages)
	assert.Equal(t, []string{"careful"}, m.Warnings())
	assert.Equal(t, []string{"failed: 3"}, m.Errors())
}
