package buffer

import (
	"github.com/vnykmshr/rxflow/pkg/common/validation"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
)

// CountConfig configures count-based buffering.
type CountConfig struct {
	// Size is the number of values in a full buffer. Must be positive.
	Size int

	// Stride is the number of values between buffer starts. Zero means Size,
	// giving tumbling buffers. A smaller stride overlaps buffers; a larger
	// one leaves gaps whose values belong to no buffer.
	Stride int

	Options observable.Options
}

// DefaultCountConfig returns tumbling buffers of 100 values.
func DefaultCountConfig() CountConfig {
	return CountConfig{Size: 100}
}

func (c CountConfig) validate() error {
	if err := validation.ValidatePositive("buffer", "size", c.Size); err != nil {
		return err
	}
	return validation.ValidateNonNegative("buffer", "stride", c.Stride)
}

// Count buffers source into slices of size values, starting a new buffer
// every stride values (0 means size). An invalid size or stride is reported
// as the stream's error on subscribe.
func Count[T any](source observable.Observable[T], size, stride int) observable.Observable[[]T] {
	op, err := NewCount(source, CountConfig{Size: size, Stride: stride})
	if err != nil {
		return observable.Throw[[]T](err)
	}
	return op
}

// NewCount is Count with full configuration. It returns a
// *errors.ValidationError for an invalid configuration.
//
// A counter starting at 0 advances with every value; a buffer opens whenever
// it is a multiple of the stride. Every value goes to every open buffer and
// a buffer is emitted as soon as it holds Size values. When the source
// completes the under-filled buffers are emitted in the order they opened.
func NewCount[T any](source observable.Observable[T], cfg CountConfig) (observable.Observable[[]T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Stride == 0 {
		cfg.Stride = cfg.Size
	}

	return func(out *observable.Sink[[]T]) {
		set := newBufferSet(out, cfg.Options, "buffer_count")
		count := 0

		set.do(func() {
			set.subscribe(source, func(v T) {
				if count%cfg.Stride == 0 {
					set.open(nil)
				}
				count++
				set.push(v)
				set.closeFull(cfg.Size)
			})
		})
	}, nil
}
