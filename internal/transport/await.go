package transport

import "context"

// Await runs a blocking stack call and returns when it finishes, when ctx
// ends, or when the link drops, whichever comes first. Stacks without
// context support are wrapped with it; the abandoned call keeps running
// and the stack's own request queue holds later calls behind it.
func Await[T any](ctx context.Context, closed <-chan struct{}, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	select {
	case <-closed:
		return zero, ErrDisconnected
	default:
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-closed:
		return zero, ErrDisconnected
	}
}
