package stripe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	stripelib "github.com/stripe/stripe-go/v72"
)

// SubscriptionStatus is the status of a Subscription.
type SubscriptionStatus int

const (
	SubscriptionStatusUnknown SubscriptionStatus = iota
	SubscriptionStatusTrialing
	SubscriptionStatusActive
	SubscriptionStatusPastDue
	SubscriptionStatusCanceled
	SubscriptionStatusUnpaid
)

// SubscriptionInfo is used for subscribing a Customer to a Plan. The Plan is
// required.
type SubscriptionInfo struct {
	Plan     string
	Coupon   string
	Prorate  *bool // Prorate is only sent if set, use stripelib.Bool to set it.
	TrialEnd int64 // TrialEnd is the unix time the trial should end.
	Card     *CreditCardInfo
}

// Subscription is the Subscription of a Customer to a Plan. A Customer can
// only have one Subscription.
type Subscription struct {
	Object             string             `json:"object"`
	Customer           string             `json:"customer"`
	Plan               *Plan              `json:"plan,omitempty"`
	Status             SubscriptionStatus `json:"status"`
	Start              int64              `json:"start"`
	CurrentPeriodStart int64              `json:"current_period_start"`
	CurrentPeriodEnd   int64              `json:"current_period_end"`
	TrialStart         int64              `json:"trial_start,omitempty"`
	TrialEnd           int64              `json:"trial_end,omitempty"`
	CanceledAt         int64              `json:"canceled_at,omitempty"`
	EndedAt            int64              `json:"ended_at,omitempty"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
}

var (
	_ Encoder  = (*SubscriptionInfo)(nil)
	_ Resource = (*Subscription)(nil)

	subscriptionEndpoint = "subscription"

	// subscriptionStatuses maps the status as sent by Stripe to the
	// SubscriptionStatus.
	subscriptionStatuses = map[stripelib.SubscriptionStatus]SubscriptionStatus{
		stripelib.SubscriptionStatusTrialing: SubscriptionStatusTrialing,
		stripelib.SubscriptionStatusActive:   SubscriptionStatusActive,
		stripelib.SubscriptionStatusPastDue:  SubscriptionStatusPastDue,
		stripelib.SubscriptionStatusCanceled: SubscriptionStatusCanceled,
		stripelib.SubscriptionStatusUnpaid:   SubscriptionStatusUnpaid,
	}

	subscriptionStatusNames = map[SubscriptionStatus]stripelib.SubscriptionStatus{
		SubscriptionStatusTrialing: stripelib.SubscriptionStatusTrialing,
		SubscriptionStatusActive:   stripelib.SubscriptionStatusActive,
		SubscriptionStatusPastDue:  stripelib.SubscriptionStatusPastDue,
		SubscriptionStatusCanceled: stripelib.SubscriptionStatusCanceled,
		SubscriptionStatusUnpaid:   stripelib.SubscriptionStatusUnpaid,
	}
)

// ParseSubscriptionStatus returns the SubscriptionStatus for the given status
// as sent by Stripe. An empty string is SubscriptionStatusUnknown.
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	if s == "" {
		return SubscriptionStatusUnknown, nil
	}

	status, ok := subscriptionStatuses[stripelib.SubscriptionStatus(s)]

	if !ok {
		return SubscriptionStatusUnknown, fmt.Errorf("stripe: unknown subscription status %q", s)
	}
	return status, nil
}

func (s SubscriptionStatus) String() string {
	if name, ok := subscriptionStatusNames[s]; ok {
		return string(name)
	}
	return "unknown"
}

// MarshalJSON writes the status as it is sent by Stripe. An unknown status is
// written as null.
func (s SubscriptionStatus) MarshalJSON() ([]byte, error) {
	name, ok := subscriptionStatusNames[s]

	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(string(name))
}

// UnmarshalJSON decodes the status as it is sent by Stripe. A null, empty, or
// unrecognised status is SubscriptionStatusUnknown.
func (s *SubscriptionStatus) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = SubscriptionStatusUnknown
		return nil
	}

	var str string

	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	status, err := ParseSubscriptionStatus(str)

	if err != nil {
		status = SubscriptionStatusUnknown
	}

	(*s) = status
	return nil
}

// Encode implements the Encoder interface.
func (i *SubscriptionInfo) Encode(b *bytes.Buffer) error {
	if err := required("subscription plan", i.Plan); err != nil {
		return err
	}

	writePair(b, "plan", i.Plan)
	writeOptional(b, "coupon", i.Coupon)

	if i.Prorate != nil {
		writePair(b, "prorate", strconv.FormatBool(*i.Prorate))
	}
	if i.TrialEnd > 0 {
		writeInt(b, "trial_end", i.TrialEnd)
	}

	if i.Card != nil {
		return i.Card.Encode(b)
	}
	return nil
}

// Subscribe subscribes the Customer of the given ID to the Plan in the given
// info. If the Customer is already subscribed then their Subscription is
// changed to the new Plan.
func (s *Stripe) Subscribe(customer string, info *SubscriptionInfo) (*Subscription, error) {
	if err := required("customer id", customer); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, invalidArgument("subscription", "cannot be nil")
	}

	sub := &Subscription{Customer: customer}

	if err := s.post(sub.Endpoint(), info, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetSubscription returns the Subscription of the Customer of the given ID.
func (s *Stripe) GetSubscription(customer string) (*Subscription, error) {
	sub := &Subscription{Customer: customer}

	if err := sub.Load(s); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe cancels the Subscription of the Customer of the given ID. If
// atPeriodEnd is true, then the Subscription stays active until the end of
// the current period.
func (s *Stripe) Unsubscribe(customer string, atPeriodEnd bool) (*Subscription, error) {
	if err := required("customer id", customer); err != nil {
		return nil, err
	}

	sub := &Subscription{Customer: customer}

	uri := sub.Endpoint() + "?" + Params{"at_period_end": atPeriodEnd}.String()

	if err := s.delete(uri, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// WithinGrace will return true if the current Subscription has been canceled
// at the end of the period, and that period has not ended yet.
func (s *Subscription) WithinGrace() bool {
	if s == nil {
		return false
	}

	if !s.CancelAtPeriodEnd {
		return false
	}
	return time.Now().Before(time.Unix(s.CurrentPeriodEnd, 0))
}

// Valid will return whether or not the current Subscription is valid. A
// Subscription is valid if it is active or trialing, and if it was canceled
// at the end of the period, if it is still within that period.
func (s *Subscription) Valid() bool {
	if s == nil {
		return false
	}

	if s.Status != SubscriptionStatusActive && s.Status != SubscriptionStatusTrialing {
		return false
	}

	if s.CancelAtPeriodEnd {
		return s.WithinGrace()
	}
	return true
}

// Endpoint implements the Resource interface. The Subscription lives under the
// Customer it belongs to.
func (s *Subscription) Endpoint(uris ...string) string {
	return endpoint(customerEndpoint, s.Customer, append([]string{subscriptionEndpoint}, uris...)...)
}

// Load implements the Resource interface.
func (s *Subscription) Load(st *Stripe) error {
	if err := required("customer id", s.Customer); err != nil {
		return err
	}
	return st.get(s.Endpoint(), s)
}
