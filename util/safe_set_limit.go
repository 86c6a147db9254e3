package util

import "golang.org/x/sync/errgroup"

// SafeSetLimit sets the number of goroutines g may run at once. errgroup panics on a
// limit of 0, so any limit below 1 runs the group with a single goroutine.
func SafeSetLimit(g *errgroup.Group, limit int) {
	if limit < 1 {
		limit = 1
	}

	g.SetLimit(limit)
}
