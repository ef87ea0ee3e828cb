// Package middleware wraps data sinks with cross-cutting persistence
// behavior: masking sensitive values and encrypting records at rest.
package middleware

import "github.com/perceptlab/staircase/pkg/ports"

// Middleware allows wrapping a DataSink to add behavior.
type Middleware func(ports.DataSink) ports.DataSink

// Chain applies middlewares so the first one listed sees writes first.
func Chain(sink ports.DataSink, middlewares ...Middleware) ports.DataSink {
	for i := len(middlewares) - 1; i >= 0; i-- {
		sink = middlewares[i](sink)
	}
	return sink
}
