package stripe

import (
	"encoding/json"

	stripelib "github.com/stripe/stripe-go/v72"
)

// LineKind is the kind of line an InvoiceLineItem is on an Invoice.
type LineKind int

const (
	LineInvoiceItem LineKind = iota
	LineProration
	LineSubscription
)

// Period is the period of time an InvoiceLineItem covers.
type Period struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// InvoiceLineItem is a single line on an Invoice. Depending on the Kind of the
// line, either the Plan or the Description will be set.
type InvoiceLineItem struct {
	Kind LineKind `json:"-"`

	ID          string             `json:"id,omitempty"`
	Amount      int                `json:"amount"`
	Currency    stripelib.Currency `json:"currency,omitempty"`
	Description string             `json:"description,omitempty"`
	Date        int64              `json:"date,omitempty"`
	Period      *Period            `json:"period,omitempty"`
	Plan        *Plan              `json:"plan,omitempty"`
}

// InvoiceLines are the lines on an Invoice grouped by their kind.
type InvoiceLines struct {
	InvoiceItems  []*InvoiceLineItem `json:"invoiceitems"`
	Prorations    []*InvoiceLineItem `json:"prorations"`
	Subscriptions []*InvoiceLineItem `json:"subscriptions"`
}

// Invoice is the Invoice resource from Stripe.
type Invoice struct {
	ID                 string       `json:"id,omitempty"`
	Object             string       `json:"object"`
	Livemode           bool         `json:"livemode"`
	Date               int64        `json:"date"`
	Customer           string       `json:"customer"`
	Subtotal           int          `json:"subtotal"`
	Total              int          `json:"total"`
	AmountDue          int          `json:"amount_due"`
	StartingBalance    int          `json:"starting_balance"`
	EndingBalance      int          `json:"ending_balance"`
	Attempted          bool         `json:"attempted"`
	AttemptCount       int          `json:"attempt_count"`
	Closed             bool         `json:"closed"`
	Paid               bool         `json:"paid"`
	PeriodStart        int64        `json:"period_start"`
	PeriodEnd          int64        `json:"period_end"`
	NextPaymentAttempt int64        `json:"next_payment_attempt,omitempty"`
	Charge             string       `json:"charge,omitempty"`
	Discount           *Discount    `json:"discount,omitempty"`
	Lines              InvoiceLines `json:"lines"`
}

// InvoiceCollection is a single page of invoices, along with the total number
// of invoices that can be paged through.
type InvoiceCollection struct {
	Total int        `json:"count"`
	Data  []*Invoice `json:"data"`
}

var (
	_ Resource = (*Invoice)(nil)

	invoiceEndpoint = "/invoices"
)

func setLineKind(items []*InvoiceLineItem, kind LineKind) {
	for _, it := range items {
		if it != nil {
			it.Kind = kind
		}
	}
}

// UnmarshalJSON decodes the lines, and sets the Kind of each line based on
// the group it was in.
func (l *InvoiceLines) UnmarshalJSON(b []byte) error {
	type lines InvoiceLines

	var tmp lines

	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}

	setLineKind(tmp.InvoiceItems, LineInvoiceItem)
	setLineKind(tmp.Prorations, LineProration)
	setLineKind(tmp.Subscriptions, LineSubscription)

	(*l) = InvoiceLines(tmp)
	return nil
}

// LineItems returns all of the lines on the Invoice. The invoice items are
// first, followed by the prorations, then the subscriptions.
func (i *Invoice) LineItems() []*InvoiceLineItem {
	items := make([]*InvoiceLineItem, 0, len(i.Lines.InvoiceItems)+len(i.Lines.Prorations)+len(i.Lines.Subscriptions))

	for _, group := range [][]*InvoiceLineItem{i.Lines.InvoiceItems, i.Lines.Prorations, i.Lines.Subscriptions} {
		for _, it := range group {
			if it != nil {
				items = append(items, it)
			}
		}
	}
	return items
}

// GetInvoice returns the Invoice of the given ID.
func (s *Stripe) GetInvoice(id string) (*Invoice, error) {
	i := &Invoice{ID: id}

	if err := i.Load(s); err != nil {
		return nil, err
	}
	return i, nil
}

// GetInvoices returns the page of invoices at the given offset. If customer is
// not empty then only the invoices for that customer are returned.
func (s *Stripe) GetInvoices(offset, count int, customer string) (*InvoiceCollection, error) {
	params, err := pageParams(offset, count, customer)

	if err != nil {
		return nil, err
	}

	ic := &InvoiceCollection{}

	if err := s.get(invoiceEndpoint+"?"+params.String(), ic); err != nil {
		return nil, err
	}
	return ic, nil
}

// GetUpcomingInvoice returns the upcoming Invoice for the Customer of the
// given ID.
func (s *Stripe) GetUpcomingInvoice(customer string) (*Invoice, error) {
	if err := required("customer id", customer); err != nil {
		return nil, err
	}

	i := &Invoice{}

	uri := i.Endpoint("upcoming") + "?" + Params{"customer": customer}.String()

	if err := s.get(uri, i); err != nil {
		return nil, err
	}
	return i, nil
}

// Endpoint implements the Resource interface.
func (i *Invoice) Endpoint(uris ...string) string {
	return endpoint(invoiceEndpoint, i.ID, uris...)
}

// Load implements the Resource interface.
func (i *Invoice) Load(s *Stripe) error {
	if err := required("invoice id", i.ID); err != nil {
		return err
	}
	return s.get(i.Endpoint(), i)
}
