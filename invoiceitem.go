package stripe

import (
	"bytes"

	stripelib "github.com/stripe/stripe-go/v72"
)

// InvoiceItemInfo is used for creating an InvoiceItem that will be added to
// the next Invoice of a Customer. The Customer is required.
type InvoiceItemInfo struct {
	Customer    string
	Amount      int
	Currency    stripelib.Currency // Currency defaults to usd if not set.
	Description string
}

// InvoiceItemUpdateInfo is used for updating an InvoiceItem. The Currency and
// Customer of an InvoiceItem cannot be changed once created, so these must
// not be set.
type InvoiceItemUpdateInfo struct {
	Customer    string
	Amount      int
	Currency    stripelib.Currency
	Description string
}

// InvoiceItem is the InvoiceItem resource from Stripe.
type InvoiceItem struct {
	ID          string             `json:"id"`
	Object      string             `json:"object"`
	Livemode    bool               `json:"livemode"`
	Amount      int                `json:"amount"`
	Currency    stripelib.Currency `json:"currency"`
	Customer    string             `json:"customer"`
	Date        int64              `json:"date"`
	Description string             `json:"description,omitempty"`
	Invoice     string             `json:"invoice,omitempty"`
	Deleted     bool               `json:"deleted,omitempty"`
}

// InvoiceItemCollection is a single page of invoice items, along with the
// total number of invoice items that can be paged through.
type InvoiceItemCollection struct {
	Total int            `json:"count"`
	Data  []*InvoiceItem `json:"data"`
}

var (
	_ Encoder  = (*InvoiceItemInfo)(nil)
	_ Encoder  = (*InvoiceItemUpdateInfo)(nil)
	_ Resource = (*InvoiceItem)(nil)

	invoiceItemEndpoint = "/invoiceitems"
)

// Encode implements the Encoder interface.
func (i *InvoiceItemInfo) Encode(b *bytes.Buffer) error {
	currency := i.Currency

	if currency == "" {
		currency = stripelib.CurrencyUSD
	}

	writePair(b, "customer", i.Customer)
	writeInt(b, "amount", int64(i.Amount))
	writePair(b, "currency", string(currency))
	writeOptional(b, "description", i.Description)
	return nil
}

// Encode implements the Encoder interface. This will return an error if the
// Currency or Customer is set.
func (i *InvoiceItemUpdateInfo) Encode(b *bytes.Buffer) error {
	if i.Currency != "" {
		return invalidArgument("currency", "cannot be changed when updating an invoice item")
	}
	if i.Customer != "" {
		return invalidArgument("customer", "should not be set when updating an invoice item")
	}

	writeInt(b, "amount", int64(i.Amount))
	writeOptional(b, "description", i.Description)
	return nil
}

// CreateInvoiceItem creates a new InvoiceItem with the given info.
func (s *Stripe) CreateInvoiceItem(info *InvoiceItemInfo) (*InvoiceItem, error) {
	if info == nil {
		return nil, invalidArgument("invoice item", "cannot be nil")
	}
	if err := required("customer", info.Customer); err != nil {
		return nil, err
	}

	i := &InvoiceItem{}

	if err := s.post(invoiceItemEndpoint, info, i); err != nil {
		return nil, err
	}
	return i, nil
}

// GetInvoiceItem returns the InvoiceItem of the given ID.
func (s *Stripe) GetInvoiceItem(id string) (*InvoiceItem, error) {
	i := &InvoiceItem{ID: id}

	if err := i.Load(s); err != nil {
		return nil, err
	}
	return i, nil
}

// UpdateInvoiceItem updates the InvoiceItem of the given ID with the given
// info.
func (s *Stripe) UpdateInvoiceItem(id string, info *InvoiceItemUpdateInfo) (*InvoiceItem, error) {
	if err := required("invoice item id", id); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, invalidArgument("invoice item", "cannot be nil")
	}

	i := &InvoiceItem{ID: id}

	if err := s.post(i.Endpoint(), info, i); err != nil {
		return nil, err
	}
	return i, nil
}

// DeleteInvoiceItem deletes the InvoiceItem of the given ID.
func (s *Stripe) DeleteInvoiceItem(id string) (*InvoiceItem, error) {
	if err := required("invoice item id", id); err != nil {
		return nil, err
	}

	i := &InvoiceItem{ID: id}

	if err := s.delete(i.Endpoint(), i); err != nil {
		return nil, err
	}
	return i, nil
}

// GetInvoiceItems returns the page of invoice items at the given offset. If
// customer is not empty then only the invoice items for that customer are
// returned.
func (s *Stripe) GetInvoiceItems(offset, count int, customer string) (*InvoiceItemCollection, error) {
	params, err := pageParams(offset, count, customer)

	if err != nil {
		return nil, err
	}

	ic := &InvoiceItemCollection{}

	if err := s.get(invoiceItemEndpoint+"?"+params.String(), ic); err != nil {
		return nil, err
	}
	return ic, nil
}

// Endpoint implements the Resource interface.
func (i *InvoiceItem) Endpoint(uris ...string) string {
	return endpoint(invoiceItemEndpoint, i.ID, uris...)
}

// Load implements the Resource interface.
func (i *InvoiceItem) Load(s *Stripe) error {
	if err := required("invoice item id", i.ID); err != nil {
		return err
	}
	return s.get(i.Endpoint(), i)
}
