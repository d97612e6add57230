package rulecraft

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving events.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern over decoded protocol events.
// Cancellation flows through the context passed to the streamer that
// produced it.
//
// Next() returns the next event, io.EOF on normal completion, or a
// non-EOF error for transport/protocol failures. A stream that ends
// without a terminal event reports ErrUnexpectedEnd.
//
// State() returns the current StreamState. Callers can use it to
// determine whether the session state they folded so far is partial or
// complete.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}
