package stripe

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Plans provides a way of keeping the plans configured in Stripe in memory.
// You would typically use this if you are storing the IDs of your plans in a
// file on disk, and want them loaded up at start time of your application.
type Plans struct {
	mu    sync.RWMutex
	ids   []string
	plans map[string]*Plan
}

// ErrUnknownPlan denotes when a plan cannot be found in the set of plans.
var ErrUnknownPlan = errors.New("unknown plan")

// LoadPlans will load in all of the plan IDs from the given io.Reader. It is
// expected for each plan ID to be on its own separate line. Comments (lines
// prefixed with #) are ignored. The given errh function is used for handling
// any errors that arise when calling out to Stripe.
func LoadPlans(s *Stripe, r io.Reader, errh func(error)) (*Plans, error) {
	p := &Plans{
		ids:   make([]string, 0),
		plans: make(map[string]*Plan),
	}

	if err := p.Reload(s, r, errh); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload loads in new plan IDs from the given io.Reader. This will return an
// error if there is any issue with reading from the given io.Reader. Any
// errors that occur when loading in the plans via Stripe will be handled via
// the given errh callback. This will only load in the new plans that are
// found.
func (p *Plans) Reload(s *Stripe, r io.Reader, errh func(error)) error {
	ids := make([]string, 0)
	seen := make(map[string]struct{})

	err := scanlines(r, func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}

		p.mu.RLock()
		_, ok := p.plans[id]
		p.mu.RUnlock()

		if !ok {
			ids = append(ids, id)
		}
	})

	if err != nil {
		return err
	}

	loaded := make([]*Plan, len(ids))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	g.SetLimit(runtime.GOMAXPROCS(0) + 10)

	for i, id := range ids {
		i, id := i, id

		g.Go(func() error {
			plan, err := s.GetPlan(id)

			if err != nil {
				if errh != nil {
					mu.Lock()
					errh(fmt.Errorf("failed to load plan %s: %w", id, err))
					mu.Unlock()
				}
				return nil
			}

			loaded[i] = plan
			return nil
		})
	}

	g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	for i, plan := range loaded {
		if plan == nil {
			continue
		}

		if _, ok := p.plans[ids[i]]; !ok {
			p.ids = append(p.ids, ids[i])
			p.plans[ids[i]] = plan
		}
	}
	return nil
}

// Get returns the plan of the given ID, if it has been loaded.
func (p *Plans) Get(id string) (*Plan, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	plan, ok := p.plans[id]

	if !ok {
		return nil, ErrUnknownPlan
	}
	return plan, nil
}

// Slice returns the loaded plans in the order they were read in.
func (p *Plans) Slice() []*Plan {
	p.mu.RLock()
	defer p.mu.RUnlock()

	plans := make([]*Plan, 0, len(p.ids))

	for _, id := range p.ids {
		plans = append(plans, p.plans[id])
	}
	return plans
}
