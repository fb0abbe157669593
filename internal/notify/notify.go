// Package notify carries user-visible notifications out of the service layer.
package notify

import (
	"log/slog"
	"sync"
)

// Sink receives user-visible notifications. It is the toast surface of the
// client: services report failures here instead of propagating errors.
type Sink interface {
	Info(message string)
	Error(message string)
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a Sink backed by logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Info(message string) {
	s.logger.Info("notice", "message", message)
}

func (s *LogSink) Error(message string) {
	s.logger.Error("notice", "message", message)
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (r *Recorder) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, message)
}

func (r *Recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

// Infos returns a copy of recorded info notifications.
func (r *Recorder) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.infos...)
}

// Errors returns a copy of recorded error notifications.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}
