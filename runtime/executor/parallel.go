package executor

import (
	"cmp"
	"slices"

	"github.com/aledsdavies/cadence/core/routine"
	"golang.org/x/sync/errgroup"
)

// executeParallel runs the children of p concurrently.
//
// Children the outstanding skip-ahead fully covers are dropped. The longest
// remaining child runs against c; every other child runs against its own
// shadow context so that progress is only counted once. Cancellation and
// pause are linked both ways between c and each shadow while the children
// run. Among children of equal duration, the earlier one runs against c.
func (e *Executor) executeParallel(c *Context, p *routine.Parallel) error {
	children := p.Children()
	if skip := c.SkipAhead(); skip > 0 {
		children = slices.DeleteFunc(children, func(child routine.Action) bool {
			return child.Duration() <= skip
		})
	}
	if len(children) == 0 {
		c.AddProgress(p.Duration())
		return nil
	}

	slices.SortStableFunc(children, func(a, b routine.Action) int {
		return cmp.Compare(b.Duration(), a.Duration())
	})

	var g errgroup.Group
	for i, child := range children {
		target := c
		if i > 0 {
			shadow := c.shadow()
			unlink := link(c, shadow)
			shadow.SetPaused(c.IsPaused())
			defer shadow.Cancel()
			defer unlink()
			target = shadow
		}
		g.Go(func() error {
			return e.Execute(target, child)
		})
	}

	err := g.Wait()
	if err == nil && c.IsCancelled() {
		return ErrCancelled
	}
	return err
}
