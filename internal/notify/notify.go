// Package notify delivers short, user-facing notices. Notices name the
// action and the project involved; they never carry stack traces.
package notify

import "log/slog"

// Sink receives user-facing notices.
type Sink interface {
	Notify(message string)
}

// Func adapts a function to the Sink interface.
type Func func(message string)

// Notify implements Sink.
func (f Func) Notify(message string) { f(message) }

// NewLogSink returns a sink that records notices through the logger.
func NewLogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return Func(func(message string) {
		logger.Warn("notice", slog.String("message", message))
	})
}

// Multi fans a notice out to every sink.
func Multi(sinks ...Sink) Sink {
	return Func(func(message string) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(message)
			}
		}
	})
}
