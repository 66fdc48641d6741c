package stripe

import (
	"bytes"
	"strings"

	stripelib "github.com/stripe/stripe-go/v72"
)

// Charge is a charge made against a card or customer.
type Charge struct {
	ID             string             `json:"id"`
	Object         string             `json:"object"`
	Livemode       bool               `json:"livemode"`
	Amount         int                `json:"amount"`
	AmountRefunded int                `json:"amount_refunded"`
	Currency       stripelib.Currency `json:"currency"`
	Created        int64              `json:"created"`
	Description    string             `json:"description,omitempty"`
	Paid           bool               `json:"paid"`
	Refunded       bool               `json:"refunded"`
	Disputed       bool               `json:"disputed"`
	Fee            int                `json:"fee"`
	Customer       string             `json:"customer,omitempty"`
	Invoice        string             `json:"invoice,omitempty"`
	FailureMessage string             `json:"failure_message,omitempty"`
	Card           *Card              `json:"card,omitempty"`
}

// ChargeCollection is a single page of charges, along with the total number
// of charges that can be paged through.
type ChargeCollection struct {
	Total int       `json:"count"`
	Data  []*Charge `json:"data"`
}

type chargeInfo struct {
	amount      int
	currency    string
	description string
	customer    string
	card        *CreditCardInfo
}

var (
	_ Resource = (*Charge)(nil)

	chargeEndpoint = "/charges"
)

func (c chargeInfo) Encode(b *bytes.Buffer) error {
	writeInt(b, "amount", int64(c.amount))
	writePair(b, "currency", c.currency)
	writeOptional(b, "description", c.description)

	if c.card != nil {
		return c.card.Encode(b)
	}
	writePair(b, "customer", c.customer)
	return nil
}

func (s *Stripe) charge(info chargeInfo) (*Charge, error) {
	if info.amount < 0 {
		return nil, outOfRange("amount", "must be greater than or equal to 0")
	}
	if err := required("currency", info.currency); err != nil {
		return nil, err
	}

	info.currency = strings.ToLower(info.currency)

	c := &Charge{}

	if err := s.post(chargeEndpoint, info, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ChargeCustomer charges the given customer the given amount, in the
// currency's smallest unit.
func (s *Stripe) ChargeCustomer(amount int, currency, customer, description string) (*Charge, error) {
	if err := required("customer", customer); err != nil {
		return nil, err
	}

	return s.charge(chargeInfo{
		amount:      amount,
		currency:    currency,
		description: description,
		customer:    customer,
	})
}

// ChargeCard charges the given card the given amount, in the currency's
// smallest unit.
func (s *Stripe) ChargeCard(amount int, currency string, card *CreditCardInfo, description string) (*Charge, error) {
	if card == nil {
		return nil, invalidArgument("card", "cannot be nil")
	}

	return s.charge(chargeInfo{
		amount:      amount,
		currency:    currency,
		description: description,
		card:        card,
	})
}

// GetCharge returns the charge of the given ID.
func (s *Stripe) GetCharge(id string) (*Charge, error) {
	c := &Charge{ID: id}

	if err := c.Load(s); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCharges returns the page of charges at the given offset. If customer is
// not empty then only the charges for that customer are returned.
func (s *Stripe) GetCharges(offset, count int, customer string) (*ChargeCollection, error) {
	params, err := pageParams(offset, count, customer)

	if err != nil {
		return nil, err
	}

	cc := &ChargeCollection{}

	if err := s.get(chargeEndpoint+"?"+params.String(), cc); err != nil {
		return nil, err
	}
	return cc, nil
}

// Refund refunds the full amount of the charge of the given ID.
func (s *Stripe) Refund(id string) (*Charge, error) {
	if err := required("charge id", id); err != nil {
		return nil, err
	}

	c := &Charge{ID: id}

	if err := s.post(c.Endpoint("refund"), nil, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RefundAmount refunds part of the charge of the given ID.
func (s *Stripe) RefundAmount(id string, amount int) (*Charge, error) {
	if err := required("charge id", id); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, invalidArgument("amount", "must be greater than 0")
	}

	c := &Charge{ID: id}

	uri := c.Endpoint("refund") + "?" + Params{"amount": amount}.String()

	if err := s.post(uri, nil, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Endpoint implements the Resource interface.
func (c *Charge) Endpoint(uris ...string) string {
	return endpoint(chargeEndpoint, c.ID, uris...)
}

// Load implements the Resource interface.
func (c *Charge) Load(s *Stripe) error {
	if err := required("charge id", c.ID); err != nil {
		return err
	}
	return s.get(c.Endpoint(), c)
}
