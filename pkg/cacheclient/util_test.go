// +build integration

package cacheclient

import "context"

func newContext() context.Context {
	return context.Background()
}

func ignoreCtx[T any](fn func() (T, error)) func(ctx context.Context) (T, error) {
	return func(context.Context) (T, error) {
		return fn()
	}
}
