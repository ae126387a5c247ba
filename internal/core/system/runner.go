package system

import (
	"context"
	"sort"

	"go.uber.org/multierr"

	"github.com/hexline/server/internal/phase"
)

// Runner executes registered systems phase by phase, in stage order.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Len() int { return len(r.systems) }

// RunPhase runs every system bound to p. A failing system does not stop the
// ones after it; all errors are returned together.
func (r *Runner) RunPhase(ctx context.Context, p phase.Phase) error {
	r.ensureSorted()
	var errs error
	for _, s := range r.systems {
		if s.Phase() != p {
			continue
		}
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		errs = multierr.Append(errs, s.Update(ctx))
	}
	return errs
}

// Has reports whether any system is bound to p.
func (r *Runner) Has(p phase.Phase) bool {
	for _, s := range r.systems {
		if s.Phase() == p {
			return true
		}
	}
	return false
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Stage() < r.systems[j].Stage()
		})
		r.sorted = true
	}
}
