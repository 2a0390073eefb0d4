package logger

import (
	"fmt"
	"sync"
)

// MockLogger records messages so tests can assert on them. It is safe for concurrent use.
type MockLogger struct {
	mu            sync.Mutex
	DebugMessages []string
	InfoMessages  []string
	WarnMessages  []string
	ErrorMessages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(dst *[]string, template string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(template, args...))
}

func (m *MockLogger) Debugf(template string, args ...interface{}) {
	m.record(&m.DebugMessages, template, args...)
}

func (m *MockLogger) Infof(template string, args ...interface{}) {
	m.record(&m.InfoMessages, template, args...)
}

func (m *MockLogger) Warnf(template string, args ...interface{}) {
	m.record(&m.WarnMessages, template, args...)
}

func (m *MockLogger) Errorf(template string, args ...interface{}) {
	m.record(&m.ErrorMessages, template, args...)
}

func (m *MockLogger) Sync() error { return nil }

// Errors returns a copy of the recorded error messages.
func (m *MockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ErrorMessages...)
}

// Warnings returns a copy of the recorded warning messages.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarnMessages...)
}
