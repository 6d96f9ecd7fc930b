package observable

import "context"

// Combine returns a Producer that recomputes fn from the latest values of a
// and b whenever either changes. Nothing is emitted until both sources have
// delivered at least once.
func Combine[A, B, R any](a Source[A], b Source[B], fn func(A, B) R) Producer[R] {
	return func(ctx context.Context, emit func(R)) {
		sa := a.Subscribe()
		defer sa.Close()
		sb := b.Subscribe()
		defer sb.Close()

		var (
			va         A
			vb         B
			hasA, hasB bool
		)
		for {
			select {
			case <-ctx.Done():
				return
			case x, ok := <-sa.C():
				if !ok {
					return
				}
				va, hasA = x, true
			case x, ok := <-sb.C():
				if !ok {
					return
				}
				vb, hasB = x, true
			}
			if hasA && hasB {
				emit(fn(va, vb))
			}
		}
	}
}

// FromChannel returns a Producer forwarding every value received from the
// channel returned by open. When open fails, onErr is called and the producer
// returns without emitting.
func FromChannel[T any](open func(ctx context.Context) (<-chan T, error), onErr func(error)) Producer[T] {
	return func(ctx context.Context, emit func(T)) {
		ch, err := open(ctx)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case x, ok := <-ch:
				if !ok {
					return
				}
				emit(x)
			}
		}
	}
}
