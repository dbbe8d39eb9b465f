// Package repeat resubscribes to a stream each time it completes.
//
// A repeat controller subscribes to its source up to Config.Count times,
// forwarding every value, and completes after the last completion. Between
// subscriptions it can wait for a fixed Delay or for the first value of a
// stream returned by DelayFunc. Errors are never retried: the first error
// from the source or a delay stream ends the output.
//
// Sources that complete synchronously while being subscribed are restarted
// only after the subscribe call has returned, so repeating such a source
// many times does not grow the stack.
package repeat
