package redisstream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
)

// ListSink appends every batch it receives to a Redis list with a single
// RPUSH, so a batch lands in the list atomically. It is meant to consume the
// output of a buffering operator.
//
// The first failed write is kept and reported by Err; later batches are
// still attempted.
type ListSink[T any] struct {
	ctx    context.Context
	client redis.UniversalClient
	key    string
	encode func(T) string
	log    *slog.Logger

	mu     sync.Mutex
	pushed int
	err    error
	done   chan struct{}
	once   sync.Once
}

// SinkOption configures a ListSink.
type SinkOption func(*sinkSettings)

type sinkSettings struct {
	log *slog.Logger
}

// WithLogger sends the sink's write failures to logger instead of
// slog.Default.
func WithLogger(logger *slog.Logger) SinkOption {
	return func(s *sinkSettings) {
		if logger != nil {
			s.log = logger
		}
	}
}

// NewListSink creates a sink writing to key. encode turns a value into a
// list element; nil means fmt.Sprint.
func NewListSink[T any](ctx context.Context, client redis.UniversalClient, key string, encode func(T) string, opts ...SinkOption) *ListSink[T] {
	if encode == nil {
		encode = func(v T) string { return fmt.Sprint(v) }
	}
	settings := sinkSettings{log: slog.Default()}
	for _, opt := range opts {
		opt(&settings)
	}
	return &ListSink[T]{
		ctx:    ctx,
		client: client,
		key:    key,
		encode: encode,
		log:    settings.log.With(slog.String("sink", "redis_list"), slog.String("key", key)),
		done:   make(chan struct{}),
	}
}

// OnNext writes batch. Empty batches are skipped.
func (s *ListSink[T]) OnNext(batch []T) {
	if len(batch) == 0 {
		return
	}
	values := make([]interface{}, len(batch))
	for i, v := range batch {
		values[i] = s.encode(v)
	}

	if err := s.client.RPush(s.ctx, s.key, values...).Err(); err != nil {
		s.log.Warn("batch write failed", slog.Int("size", len(batch)), slog.Any("err", err))
		s.record(rferrors.NewOperationError("redisstream", "RPush", err).WithContext(s.key))
		return
	}

	s.mu.Lock()
	s.pushed += len(batch)
	s.mu.Unlock()
}

// OnError records the stream's error and marks the sink done.
func (s *ListSink[T]) OnError(err error) {
	s.record(err)
	s.once.Do(func() { close(s.done) })
}

// OnComplete marks the sink done.
func (s *ListSink[T]) OnComplete() {
	s.once.Do(func() { close(s.done) })
}

// Done is closed when the stream terminates.
func (s *ListSink[T]) Done() <-chan struct{} {
	return s.done
}

// Pushed returns the number of values written so far.
func (s *ListSink[T]) Pushed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushed
}

// Err returns the first write failure or stream error.
func (s *ListSink[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ListSink[T]) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
