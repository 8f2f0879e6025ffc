package cache

import "context"

// dispatch runs op on its own goroutine and hands its error to completion.
func dispatch(ctx context.Context, op func(context.Context) error, completion func(error)) {
	go func() {
		completion(op(ctx))
	}()
}
