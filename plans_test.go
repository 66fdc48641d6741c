package stripe

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// planServer serves the plans of the given IDs, and counts the requests made
// for each plan.
type planServer struct {
	mu    sync.Mutex
	plans map[string]struct{}
	hits  map[string]int
}

func (p *planServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/plans/")

	p.mu.Lock()
	p.hits[id]++
	p.mu.Unlock()

	if _, ok := p.plans[id]; !ok {
		respond(http.StatusNotFound, `{"error": {"type": "invalid_request_error", "message": "No such plan: `+id+`"}}`)(w, r)
		return
	}
	io.WriteString(w, `{"id": "`+id+`", "object": "plan", "amount": 2000, "currency": "usd", "interval": "month"}`)
}

func Test_LoadPlans(t *testing.T) {
	srv := &planServer{
		plans: map[string]struct{}{
			"gold":     {},
			"silver":   {},
			"platinum": {},
		},
		hits: make(map[string]int),
	}

	s := newTestStripe(t, srv.ServeHTTP)

	errs := make([]error, 0)

	errh := func(err error) {
		errs = append(errs, err)
	}

	plans, err := LoadPlans(s, strings.NewReader("gold\n# comment\nsilver\nbronze\n"), errh)

	if err != nil {
		t.Fatal(err)
	}

	if len(errs) != 1 {
		t.Fatalf("unexpected number of errors, expected=%d, got=%d\n", 1, len(errs))
	}

	var serr *Error

	if !errors.As(errs[0], &serr) {
		t.Errorf("unexpected error, expected=%T, got=%T\n", serr, errs[0])
	}

	expected := []string{"gold", "silver"}

	loaded := plans.Slice()

	if len(loaded) != len(expected) {
		t.Fatalf("unexpected number of plans, expected=%d, got=%d\n", len(expected), len(loaded))
	}

	for i, id := range expected {
		if loaded[i].ID != id {
			t.Errorf("plans[%d] - unexpected plan, expected=%q, got=%q\n", i, id, loaded[i].ID)
		}
	}

	if _, err := plans.Get("bronze"); !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("unexpected error, expected=%q, got=%q\n", ErrUnknownPlan, err)
	}

	if err := plans.Reload(s, strings.NewReader("gold\nplatinum\n"), errh); err != nil {
		t.Fatal(err)
	}

	p, err := plans.Get("platinum")

	if err != nil {
		t.Fatal(err)
	}

	if p.Amount != 2000 {
		t.Errorf("unexpected plan amount, expected=%d, got=%d\n", 2000, p.Amount)
	}

	srv.mu.Lock()
	n := srv.hits["gold"]
	srv.mu.Unlock()

	if n != 1 {
		t.Errorf("unexpected number of requests for plan, expected=%d, got=%d\n", 1, n)
	}

	if n := len(plans.Slice()); n != 3 {
		t.Errorf("unexpected number of plans, expected=%d, got=%d\n", 3, n)
	}
}

func Test_LoadPlansDuplicates(t *testing.T) {
	srv := &planServer{
		plans: map[string]struct{}{
			"gold":   {},
			"silver": {},
		},
		hits: make(map[string]int),
	}

	s := newTestStripe(t, srv.ServeHTTP)

	plans, err := LoadPlans(s, strings.NewReader("gold\nsilver\ngold\n  gold\nsilver\n"), nil)

	if err != nil {
		t.Fatal(err)
	}

	if n := len(plans.Slice()); n != 2 {
		t.Errorf("unexpected number of plans, expected=%d, got=%d\n", 2, n)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	for id, n := range srv.hits {
		if n != 1 {
			t.Errorf("unexpected number of requests for plan %q, expected=%d, got=%d\n", id, 1, n)
		}
	}
}
