package querycache

import (
	"context"
	"time"
)

// Watch delivers the value of k to onResult, then refetches it every
// policy.RefetchInterval, blocking until ctx is cancelled. Without a
// RefetchInterval it returns after the first result. Cancelling ctx
// abandons interest in any pending result.
func Watch[T any](ctx context.Context, s *Store, k Key, policy Policy, fn FetchFunc[T], onResult func(T, error)) {
	v, err := Fetch(ctx, s, k, policy, fn)
	if ctx.Err() != nil {
		return
	}
	onResult(v, err)

	if policy.RefetchInterval <= 0 {
		return
	}

	ticker := time.NewTicker(policy.RefetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v, err := Refetch(ctx, s, k, policy, fn)
			if ctx.Err() != nil {
				return
			}
			onResult(v, err)
		}
	}
}
