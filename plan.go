package stripe

import (
	"bytes"
	"errors"
	"strings"

	stripelib "github.com/stripe/stripe-go/v72"
)

// PlanInfo is used for creating a Plan. The ID and Amount are required.
type PlanInfo struct {
	ID              string
	Amount          int
	Currency        stripelib.Currency // Currency defaults to usd if not set.
	Interval        stripelib.PlanInterval
	Name            string
	TrialPeriodDays int
}

// Plan is the Plan resource from Stripe.
type Plan struct {
	ID              string                 `json:"id"`
	Object          string                 `json:"object"`
	Livemode        bool                   `json:"livemode"`
	Amount          int                    `json:"amount"`
	Currency        stripelib.Currency     `json:"currency"`
	Interval        stripelib.PlanInterval `json:"interval"`
	Name            string                 `json:"name"`
	TrialPeriodDays int                    `json:"trial_period_days,omitempty"`
	Deleted         bool                   `json:"deleted,omitempty"`
}

// PlanCollection is a single page of plans, along with the total number of
// plans that can be paged through.
type PlanCollection struct {
	Total int     `json:"count"`
	Data  []*Plan `json:"data"`
}

var (
	_ Encoder  = (*PlanInfo)(nil)
	_ Resource = (*Plan)(nil)

	planEndpoint = "/plans"

	planIntervals = map[stripelib.PlanInterval]struct{}{
		stripelib.PlanIntervalDay:   {},
		stripelib.PlanIntervalWeek:  {},
		stripelib.PlanIntervalMonth: {},
		stripelib.PlanIntervalYear:  {},
	}
)

// Encode implements the Encoder interface.
func (p *PlanInfo) Encode(b *bytes.Buffer) error {
	if err := required("plan id", p.ID); err != nil {
		return err
	}
	if p.Amount < 0 {
		return outOfRange("plan amount", "must be greater than or equal to 0")
	}
	if p.Interval != "" {
		if _, ok := planIntervals[p.Interval]; !ok {
			return invalidArgument("plan interval", "must be one of day, week, month, or year")
		}
	}

	currency := p.Currency

	if currency == "" {
		currency = stripelib.CurrencyUSD
	}

	writePair(b, "id", p.ID)
	writeInt(b, "amount", int64(p.Amount))
	writePair(b, "currency", string(currency))
	writeOptional(b, "interval", string(p.Interval))
	writeOptional(b, "name", p.Name)

	if p.TrialPeriodDays > 0 {
		writeInt(b, "trial_period_days", int64(p.TrialPeriodDays))
	}
	return nil
}

// CreatePlan creates a new Plan in Stripe with the given info.
func (s *Stripe) CreatePlan(info *PlanInfo) (*Plan, error) {
	if info == nil {
		return nil, invalidArgument("plan", "cannot be nil")
	}

	p := &Plan{}

	if err := s.post(planEndpoint, info, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PlanExists checks to see if the Plan of the given ID exists. This relies on
// Stripe reporting a missing plan as an invalid_request_error with a message
// containing "No such plan", any other error is returned as is.
func (s *Stripe) PlanExists(id string) (bool, error) {
	p, err := s.GetPlan(id)

	if err != nil {
		var serr *Error

		if errors.As(err, &serr) {
			if serr.Err.Type == stripelib.ErrorTypeInvalidRequest && strings.Contains(serr.Err.Message, "No such plan") {
				return false, nil
			}
		}
		return false, err
	}
	return p.ID == id, nil
}

// GetPlan returns the Plan of the given ID.
func (s *Stripe) GetPlan(id string) (*Plan, error) {
	p := &Plan{ID: id}

	if err := p.Load(s); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePlan deletes the Plan of the given ID.
func (s *Stripe) DeletePlan(id string) (*Plan, error) {
	if err := required("plan id", id); err != nil {
		return nil, err
	}

	p := &Plan{ID: id}

	if err := s.delete(p.Endpoint(), p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlans returns the page of plans at the given offset.
func (s *Stripe) GetPlans(offset, count int) (*PlanCollection, error) {
	params, err := pageParams(offset, count, "")

	if err != nil {
		return nil, err
	}

	pc := &PlanCollection{}

	if err := s.get(planEndpoint+"?"+params.String(), pc); err != nil {
		return nil, err
	}
	return pc, nil
}

// Endpoint implements the Resource interface.
func (p *Plan) Endpoint(uris ...string) string {
	return endpoint(planEndpoint, p.ID, uris...)
}

// Load implements the Resource interface.
func (p *Plan) Load(s *Stripe) error {
	if err := required("plan id", p.ID); err != nil {
		return err
	}
	return s.get(p.Endpoint(), p)
}
