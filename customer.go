package stripe

import "bytes"

// CustomerInfo is used for creating or updating a Customer. None of the fields
// are required, an empty CustomerInfo will create a Customer with nothing set
// on it.
type CustomerInfo struct {
	Card        *CreditCardInfo
	Email       string
	Description string
	Coupon      string // Coupon is the ID of the Coupon to apply to the Customer.
	Plan        string // Plan is the ID of the Plan to subscribe the Customer to.
}

// CustomerTokenInfo is used for creating a Customer with a card that has
// already been exchanged for a one-time token.
type CustomerTokenInfo struct {
	Token       string
	Email       string
	Description string
}

// Customer is the Customer resource from Stripe.
type Customer struct {
	ID             string        `json:"id"`
	Object         string        `json:"object"`
	Livemode       bool          `json:"livemode"`
	Created        int64         `json:"created"`
	Email          string        `json:"email,omitempty"`
	Description    string        `json:"description,omitempty"`
	Deleted        bool          `json:"deleted,omitempty"`
	Delinquent     bool          `json:"delinquent"`
	AccountBalance int           `json:"account_balance"`
	ActiveCard     *Card         `json:"active_card,omitempty"`
	Subscription   *Subscription `json:"subscription,omitempty"`
	Discount       *Discount     `json:"discount,omitempty"`
}

// CustomerCollection is a single page of customers, along with the total
// number of customers that can be paged through.
type CustomerCollection struct {
	Total int         `json:"count"`
	Data  []*Customer `json:"data"`
}

var (
	_ Encoder  = (*CustomerInfo)(nil)
	_ Encoder  = (*CustomerTokenInfo)(nil)
	_ Resource = (*Customer)(nil)

	customerEndpoint = "/customers"
)

// Encode implements the Encoder interface.
func (c *CustomerInfo) Encode(b *bytes.Buffer) error {
	if c.Card != nil {
		if err := c.Card.Encode(b); err != nil {
			return err
		}
	}

	writeOptional(b, "email", c.Email)
	writeOptional(b, "description", c.Description)
	writeOptional(b, "coupon", c.Coupon)
	writeOptional(b, "plan", c.Plan)
	return nil
}

// Encode implements the Encoder interface.
func (c *CustomerTokenInfo) Encode(b *bytes.Buffer) error {
	writeOptional(b, "card", c.Token)
	writeOptional(b, "email", c.Email)
	writeOptional(b, "description", c.Description)
	return nil
}

func (s *Stripe) postCustomer(uri string, enc Encoder) (*Customer, error) {
	c := &Customer{}

	if err := s.post(uri, enc, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCustomer creates a new Customer in Stripe with the given info.
func (s *Stripe) CreateCustomer(info *CustomerInfo) (*Customer, error) {
	if info == nil {
		return nil, invalidArgument("customer", "cannot be nil")
	}
	return s.postCustomer(customerEndpoint, info)
}

// CreateCustomerWithToken creates a new Customer in Stripe, with the card of
// the one-time token in the given info.
func (s *Stripe) CreateCustomerWithToken(info *CustomerTokenInfo) (*Customer, error) {
	if info == nil {
		return nil, invalidArgument("customer", "cannot be nil")
	}
	return s.postCustomer(customerEndpoint, info)
}

// UpdateCustomer updates the Customer of the given ID with the given info.
func (s *Stripe) UpdateCustomer(id string, info *CustomerInfo) (*Customer, error) {
	if err := required("customer id", id); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, invalidArgument("customer", "cannot be nil")
	}

	c := &Customer{ID: id}

	return s.postCustomer(c.Endpoint(), info)
}

// GetCustomer returns the Customer of the given ID.
func (s *Stripe) GetCustomer(id string) (*Customer, error) {
	c := &Customer{ID: id}

	if err := c.Load(s); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCustomers returns the page of customers at the given offset.
func (s *Stripe) GetCustomers(offset, count int) (*CustomerCollection, error) {
	params, err := pageParams(offset, count, "")

	if err != nil {
		return nil, err
	}

	cc := &CustomerCollection{}

	if err := s.get(customerEndpoint+"?"+params.String(), cc); err != nil {
		return nil, err
	}
	return cc, nil
}

// DeleteCustomer deletes the Customer of the given ID. The returned Customer
// will have Deleted set to true if the deletion was successful.
func (s *Stripe) DeleteCustomer(id string) (*Customer, error) {
	if err := required("customer id", id); err != nil {
		return nil, err
	}

	c := &Customer{ID: id}

	if err := s.delete(c.Endpoint(), c); err != nil {
		return nil, err
	}
	return c, nil
}

// Endpoint implements the Resource interface.
func (c *Customer) Endpoint(uris ...string) string {
	return endpoint(customerEndpoint, c.ID, uris...)
}

// Load implements the Resource interface.
func (c *Customer) Load(s *Stripe) error {
	if err := required("customer id", c.ID); err != nil {
		return err
	}
	return s.get(c.Endpoint(), c)
}
