package redisstream

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/common/validation"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
)

// Message is a pub/sub message received from Redis.
type Message struct {
	Channel string
	Pattern string
	Payload string
}

// String returns the payload.
func (m Message) String() string {
	return m.Payload
}

// Config configures a pub/sub source.
type Config struct {
	// Client is the Redis connection. Required.
	Client redis.UniversalClient

	// Channels are subscribed to by name.
	Channels []string

	// Patterns are subscribed to with PSUBSCRIBE.
	Patterns []string

	Options observable.Options
}

func (c Config) validate() error {
	if c.Client == nil {
		return validation.Missing("redisstream", "client")
	}
	if len(c.Channels) == 0 && len(c.Patterns) == 0 {
		return rferrors.NewValidationError("redisstream", "channels", c.Channels, "no channel or pattern").
			WithHint("provide at least one channel or pattern")
	}
	for _, name := range c.Channels {
		if err := validation.ValidateNotEmpty("redisstream", "channel", name); err != nil {
			return err
		}
	}
	for _, pattern := range c.Patterns {
		if err := validation.ValidateNotEmpty("redisstream", "pattern", pattern); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe streams the messages published to channels. The stream never
// completes on its own; cancel it to close the pub/sub connection.
func Subscribe(client redis.UniversalClient, channels ...string) observable.Observable[Message] {
	op, err := New(Config{Client: client, Channels: channels})
	if err != nil {
		return observable.Throw[Message](err)
	}
	return op
}

// New builds a pub/sub source from cfg. Every subscription opens its own
// pub/sub connection and waits until Redis has confirmed every channel and
// pattern before returning, so messages published after Subscribe returns
// are never missed. Messages that arrive while later confirmations are
// still pending are emitted first, in arrival order. A failed confirmation
// is reported as a *errors.OperationError on the stream.
func New(cfg Config) (observable.Observable[Message], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Options.Log("redisstream")

	return func(out *observable.Sink[Message]) {
		ctx, cancel := context.WithCancel(context.Background())

		var pubsub *redis.PubSub
		if len(cfg.Channels) > 0 {
			pubsub = cfg.Client.Subscribe(ctx, cfg.Channels...)
		}
		if len(cfg.Patterns) > 0 {
			if pubsub == nil {
				pubsub = cfg.Client.PSubscribe(ctx, cfg.Patterns...)
			} else if err := pubsub.PSubscribe(ctx, cfg.Patterns...); err != nil {
				cancel()
				_ = pubsub.Close()
				out.Error(rferrors.NewOperationError("redisstream", "PSubscribe", err))
				return
			}
		}

		early, err := confirm(ctx, pubsub, len(cfg.Channels)+len(cfg.Patterns))
		if err != nil {
			cancel()
			_ = pubsub.Close()
			log.Debug("subscription failed", slog.Any("err", err))
			out.Error(rferrors.NewOperationError("redisstream", "Subscribe", err).
				WithContext("waiting for subscription confirmation"))
			return
		}
		log.Debug("subscribed", slog.Any("channels", cfg.Channels), slog.Any("patterns", cfg.Patterns))

		messages := pubsub.Channel()
		done := make(chan struct{})
		out.AddTeardown(func() error {
			close(done)
			cancel()
			return pubsub.Close()
		})

		for _, msg := range early {
			out.Next(Message{Channel: msg.Channel, Pattern: msg.Pattern, Payload: msg.Payload})
		}

		go func() {
			for {
				select {
				case <-done:
					return
				case msg, ok := <-messages:
					if !ok {
						out.Complete()
						return
					}
					out.Next(Message{Channel: msg.Channel, Pattern: msg.Pattern, Payload: msg.Payload})
				}
			}
		}()
	}, nil
}

// confirm reads replies until want subscriptions are confirmed. Redis
// confirms each channel and pattern separately; messages received in between
// are returned so they can be delivered ahead of the live stream.
func confirm(ctx context.Context, pubsub *redis.PubSub, want int) ([]*redis.Message, error) {
	var early []*redis.Message
	for confirmed := 0; confirmed < want; {
		reply, err := pubsub.Receive(ctx)
		if err != nil {
			return nil, err
		}
		switch r := reply.(type) {
		case *redis.Subscription:
			confirmed++
		case *redis.Message:
			early = append(early, r)
		}
	}
	return early, nil
}
