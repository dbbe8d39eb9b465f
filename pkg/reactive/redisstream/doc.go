// Package redisstream connects rxflow streams to Redis.
//
// Subscribe and New turn Redis pub/sub channels into a stream of Message
// values; ListSink writes the batches produced by a buffering operator to
// a Redis list:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	events := redisstream.Subscribe(client, "events")
//	sink := redisstream.NewListSink[redisstream.Message](ctx, client, "events:batches", nil)
//	sub := buffer.Count(events, 100, 0).Subscribe(sink)
//	defer sub.Unsubscribe()
package redisstream
