// Package metrics exposes Prometheus instrumentation for glmeal: remote call
// counters and latencies recorded by the service client, and flow transition
// counts recorded by a controller subscriber. Each Metrics value owns its own
// registry so tests and embedded uses never collide on global collectors.
package metrics
