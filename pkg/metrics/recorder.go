package metrics

// Recorder binds a Registry to one operator instance. All methods are safe
// on a nil *Recorder, which is what operators get when metrics are disabled.
type Recorder struct {
	registry *Registry
	operator string
	name     string
}

// NewRecorder returns a Recorder for the operator kind and instance name, or
// nil when registry is nil.
func NewRecorder(registry *Registry, operator, name string) *Recorder {
	if registry == nil {
		return nil
	}
	if name == "" {
		name = operator
	}
	return &Recorder{registry: registry, operator: operator, name: name}
}

// BufferOpened records a newly opened buffer.
func (r *Recorder) BufferOpened() {
	if r == nil {
		return
	}
	r.registry.BuffersOpened.WithLabelValues(r.operator, r.name).Inc()
	r.registry.BuffersActive.WithLabelValues(r.operator, r.name).Inc()
}

// BufferEmitted records a buffer of size values leaving the operator.
func (r *Recorder) BufferEmitted(size int) {
	if r == nil {
		return
	}
	r.registry.BuffersEmitted.WithLabelValues(r.operator, r.name).Inc()
	r.registry.BufferSize.WithLabelValues(r.operator, r.name).Observe(float64(size))
	r.registry.BuffersActive.WithLabelValues(r.operator, r.name).Dec()
}

// BuffersDiscarded records open buffers thrown away by an error or cancellation.
func (r *Recorder) BuffersDiscarded(n int) {
	if r == nil || n == 0 {
		return
	}
	r.registry.BuffersActive.WithLabelValues(r.operator, r.name).Sub(float64(n))
}

// ValueDropped records a value that belonged to no open buffer.
func (r *Recorder) ValueDropped() {
	if r == nil {
		return
	}
	r.registry.ValuesDropped.WithLabelValues(r.operator, r.name).Inc()
}

// TimeoutFired records a deadline switching to the fallback stream.
func (r *Recorder) TimeoutFired() {
	if r == nil {
		return
	}
	r.registry.TimeoutsFired.WithLabelValues(r.name).Inc()
}

// RepeatAttempt records a (re)subscription to the repeated source.
func (r *Recorder) RepeatAttempt() {
	if r == nil {
		return
	}
	r.registry.RepeatAttempts.WithLabelValues(r.name).Inc()
}

// Error records an operator terminated by err.
func (r *Recorder) Error() {
	if r == nil {
		return
	}
	r.registry.OperatorErrors.WithLabelValues(r.operator, r.name).Inc()
}

// Subscribed records a new live subscription and returns the func that
// records its end.
func (r *Recorder) Subscribed() func() {
	if r == nil {
		return func() {}
	}
	gauge := r.registry.ActiveSubscriptions.WithLabelValues(r.operator, r.name)
	gauge.Inc()
	return gauge.Dec
}
