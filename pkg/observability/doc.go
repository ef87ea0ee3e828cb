/*
Package observability bridges the engine's lifecycle hooks to Prometheus.

The engine itself stays metrics-free; hosts that want instrumentation create
a Collector, register it with their Prometheus registry, and pass its Hooks
to the session via staircase.WithLifecycleHooks.
*/
package observability
