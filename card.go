package stripe

import (
	"bytes"
	"strconv"
	"unicode"
	"unicode/utf8"

	stripelib "github.com/stripe/stripe-go/v72"
)

// CreditCardInfo is the card to charge, attach to a customer, or exchange for
// a token. If the Number does not start with a digit, then it is treated as a
// one-time token, and none of the other fields are sent.
type CreditCardInfo struct {
	Number   string
	ExpMonth int
	ExpYear  int

	CVC  string
	Name string

	AddressLine1   string
	AddressLine2   string
	AddressZip     string
	AddressState   string
	AddressCountry string
}

// Card is a card as returned by Stripe. The number of the card is never
// returned, only the last four digits of it.
type Card struct {
	ID             string `json:"id,omitempty"`
	Object         string `json:"object"`
	Type           string `json:"type"`
	Last4          string `json:"last4"`
	ExpMonth       int    `json:"exp_month"`
	ExpYear        int    `json:"exp_year"`
	Fingerprint    string `json:"fingerprint"`
	Country        string `json:"country"`
	Name           string `json:"name,omitempty"`
	AddressLine1   string `json:"address_line1,omitempty"`
	AddressLine2   string `json:"address_line2,omitempty"`
	AddressZip     string `json:"address_zip,omitempty"`
	AddressState   string `json:"address_state,omitempty"`
	AddressCountry string `json:"address_country,omitempty"`

	CVCCheck          string `json:"cvc_check,omitempty"`
	AddressLine1Check string `json:"address_line1_check,omitempty"`
	AddressZipCheck   string `json:"address_zip_check,omitempty"`
}

// Token is a one-time token for a card.
type Token struct {
	ID       string             `json:"id"`
	Object   string             `json:"object"`
	Livemode bool               `json:"livemode"`
	Created  int64              `json:"created"`
	Used     bool               `json:"used"`
	Amount   int                `json:"amount"`
	Currency stripelib.Currency `json:"currency"`
	Card     *Card              `json:"card"`
}

var (
	_ Encoder  = (*CreditCardInfo)(nil)
	_ Resource = (*Token)(nil)

	tokenEndpoint = "/tokens"
)

func (c *CreditCardInfo) isToken() bool {
	r, _ := utf8.DecodeRuneInString(c.Number)
	return !unicode.IsDigit(r)
}

// Encode implements the Encoder interface. This will return an error if the
// card Number is empty, or if the expiration date of a card number is out of
// range.
func (c *CreditCardInfo) Encode(b *bytes.Buffer) error {
	if c.Number == "" {
		return invalidArgument("card number", "cannot be empty")
	}

	if c.isToken() {
		writePair(b, "card", c.Number)
		return nil
	}

	if c.ExpMonth < 1 || c.ExpMonth > 12 {
		return outOfRange("card exp_month", "must be between 1 and 12")
	}
	if c.ExpYear <= 0 {
		return outOfRange("card exp_year", "must be greater than 0")
	}

	writePair(b, "card[number]", c.Number)
	writePair(b, "card[exp_month]", strconv.Itoa(c.ExpMonth))
	writePair(b, "card[exp_year]", strconv.Itoa(c.ExpYear))
	writeOptional(b, "card[cvc]", c.CVC)
	writeOptional(b, "card[name]", c.Name)
	writeOptional(b, "card[address_line1]", c.AddressLine1)
	writeOptional(b, "card[address_line2]", c.AddressLine2)
	writeOptional(b, "card[address_zip]", c.AddressZip)
	writeOptional(b, "card[address_state]", c.AddressState)
	writeOptional(b, "card[address_country]", c.AddressCountry)
	return nil
}

// CreateToken creates a one-time token for the given card.
func (s *Stripe) CreateToken(card *CreditCardInfo) (*Token, error) {
	if card == nil {
		return nil, invalidArgument("card", "cannot be nil")
	}

	t := &Token{}

	if err := s.post(tokenEndpoint, card, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetToken returns the token of the given ID.
func (s *Stripe) GetToken(id string) (*Token, error) {
	t := &Token{ID: id}

	if err := t.Load(s); err != nil {
		return nil, err
	}
	return t, nil
}

// Endpoint implements the Resource interface.
func (t *Token) Endpoint(uris ...string) string {
	return endpoint(tokenEndpoint, t.ID, uris...)
}

// Load implements the Resource interface.
func (t *Token) Load(s *Stripe) error {
	if err := required("token id", t.ID); err != nil {
		return err
	}
	return s.get(t.Endpoint(), t)
}
