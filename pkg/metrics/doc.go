// Package metrics provides Prometheus instrumentation for rxflow operators.
//
// # Overview
//
// Every operator configuration embeds observable.Options, whose Metrics field
// takes a *Registry. When it is set the operator records:
//   - Buffering (buffers opened, emitted, open right now, emitted sizes, dropped values)
//   - Timeouts (deadlines that switched to a fallback stream)
//   - Repeats (source subscriptions made by a repeat controller)
//   - Lifecycle (live subscriptions, operators terminated by an error)
//
// # Quick Start
//
//	registry := metrics.NewRegistry(prometheus.NewRegistry())
//
//	batches := buffer.Count(events, 100, 0)
//	batches, err := buffer.NewCount(events, buffer.CountConfig{
//		Size:    100,
//		Options: observable.Options{Name: "orders", Metrics: registry},
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Available Metrics
//
//   - rxflow_buffer_opened_total: Total number of buffers opened
//   - rxflow_buffer_emitted_total: Total number of buffers emitted downstream
//   - rxflow_buffer_size: Histogram of emitted buffer lengths
//   - rxflow_buffer_active: Number of buffers currently open
//   - rxflow_buffer_values_dropped_total: Values that arrived while no buffer was open
//   - rxflow_timeout_fired_total: Deadlines that switched to a fallback stream
//   - rxflow_repeat_attempts_total: Source subscriptions made by repeat controllers
//   - rxflow_operator_errors_total: Operators terminated by an error
//   - rxflow_operator_subscriptions_active: Live operator subscriptions
//
// # Labels
//
//   - operator: Operator kind ("buffer_count", "buffer_time", "buffer_toggle", ...)
//   - name: User-provided name for the operator instance (defaults to the kind)
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,                                 // Build returns nil when false
//		Registry:  prometheus.NewRegistry(),             // Custom registry
//		Namespace: "myapp",                              // Override default "rxflow"
//		Labels:    prometheus.Labels{"version": "1.0"},  // Constant labels
//	}
//	registry := config.Build()
//
// # Performance
//
// Metrics are updated only when operator events occur. Operators hold a
// nil-safe Recorder, so disabled metrics cost one nil check per event.
package metrics
