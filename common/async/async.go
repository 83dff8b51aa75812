package async

import "context"

type rerr[T any] struct {
	r   T
	err error
}

type TaskAwaiter[T any] interface {
	// Result blocks until the task finishes.
	Result() (T, error)
	// Wait blocks until the task finishes or ctx is done, whichever comes first.
	// A task abandoned by ctx keeps running; its result is dropped.
	Wait(ctx context.Context) (T, error)
}

type taskAwaiterImpl[T any] struct {
	ch chan rerr[T]
}

func RunAsync[T any](exec func() (T, error)) TaskAwaiter[T] {
	ch := make(chan rerr[T], 1)
	go func() {
		r, err := exec()
		ch <- rerr[T]{
			r:   r,
			err: err,
		}
	}()

	return &taskAwaiterImpl[T]{
		ch: ch,
	}
}

func (tw *taskAwaiterImpl[T]) Result() (T, error) {
	r := <-tw.ch
	return r.r, r.err
}

func (tw *taskAwaiterImpl[T]) Wait(ctx context.Context) (T, error) {
	select {
	case r := <-tw.ch:
		return r.r, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
