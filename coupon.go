package stripe

import (
	"bytes"

	stripelib "github.com/stripe/stripe-go/v72"
)

// CouponInfo is used for creating a Coupon. The DurationInMonths is only sent
// if the Duration is repeating.
type CouponInfo struct {
	ID               string // ID is optional, Stripe will generate one if not set.
	PercentOff       int
	Duration         stripelib.CouponDuration
	DurationInMonths int
	MaxRedemptions   int
	RedeemBy         int64
}

// Coupon is the Coupon resource from Stripe.
type Coupon struct {
	ID               string                   `json:"id"`
	Object           string                   `json:"object"`
	Livemode         bool                     `json:"livemode"`
	PercentOff       int                      `json:"percent_off"`
	Duration         stripelib.CouponDuration `json:"duration"`
	DurationInMonths int                      `json:"duration_in_months,omitempty"`
	MaxRedemptions   int                      `json:"max_redemptions,omitempty"`
	RedeemBy         int64                    `json:"redeem_by,omitempty"`
	TimesRedeemed    int                      `json:"times_redeemed"`
	Deleted          bool                     `json:"deleted,omitempty"`
}

// Discount is a Coupon that has been applied to a Customer or Invoice.
type Discount struct {
	Object   string  `json:"object"`
	Customer string  `json:"customer,omitempty"`
	Coupon   *Coupon `json:"coupon"`
	Start    int64   `json:"start"`
	End      int64   `json:"end,omitempty"`
}

// CouponCollection is a single page of coupons, along with the total number of
// coupons that can be paged through.
type CouponCollection struct {
	Total int       `json:"count"`
	Data  []*Coupon `json:"data"`
}

var (
	_ Encoder  = (*CouponInfo)(nil)
	_ Resource = (*Coupon)(nil)

	couponEndpoint = "/coupons"

	couponDurations = map[stripelib.CouponDuration]struct{}{
		stripelib.CouponDurationOnce:      {},
		stripelib.CouponDurationRepeating: {},
		stripelib.CouponDurationForever:   {},
	}
)

// Encode implements the Encoder interface.
func (c *CouponInfo) Encode(b *bytes.Buffer) error {
	writeOptional(b, "id", c.ID)
	writeInt(b, "percent_off", int64(c.PercentOff))
	writePair(b, "duration", string(c.Duration))

	if c.Duration == stripelib.CouponDurationRepeating {
		writeInt(b, "duration_in_months", int64(c.DurationInMonths))
	}
	if c.MaxRedemptions > 0 {
		writeInt(b, "max_redemptions", int64(c.MaxRedemptions))
	}
	if c.RedeemBy > 0 {
		writeInt(b, "redeem_by", c.RedeemBy)
	}
	return nil
}

// validate checks the given CouponInfo before it is sent to Stripe.
func (c *CouponInfo) validate() error {
	if c.PercentOff < 1 || c.PercentOff > 100 {
		return outOfRange("coupon percent_off", "must be between 1 and 100")
	}
	if _, ok := couponDurations[c.Duration]; !ok {
		return invalidArgument("coupon duration", "must be one of once, repeating, or forever")
	}
	if c.Duration == stripelib.CouponDurationRepeating && c.DurationInMonths < 1 {
		return invalidArgument("coupon duration_in_months", "must be at least 1 when duration is repeating")
	}
	return nil
}

// CreateCoupon creates a new Coupon with the given info.
func (s *Stripe) CreateCoupon(info *CouponInfo) (*Coupon, error) {
	if info == nil {
		return nil, invalidArgument("coupon", "cannot be nil")
	}
	if err := info.validate(); err != nil {
		return nil, err
	}

	c := &Coupon{}

	if err := s.post(couponEndpoint, info, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCoupon returns the Coupon of the given ID.
func (s *Stripe) GetCoupon(id string) (*Coupon, error) {
	c := &Coupon{ID: id}

	if err := c.Load(s); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCoupon deletes the Coupon of the given ID.
func (s *Stripe) DeleteCoupon(id string) (*Coupon, error) {
	if err := required("coupon id", id); err != nil {
		return nil, err
	}

	c := &Coupon{ID: id}

	if err := s.delete(c.Endpoint(), c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCoupons returns the page of coupons at the given offset.
func (s *Stripe) GetCoupons(offset, count int) (*CouponCollection, error) {
	params, err := pageParams(offset, count, "")

	if err != nil {
		return nil, err
	}

	cc := &CouponCollection{}

	if err := s.get(couponEndpoint+"?"+params.String(), cc); err != nil {
		return nil, err
	}
	return cc, nil
}

// Endpoint implements the Resource interface.
func (c *Coupon) Endpoint(uris ...string) string {
	return endpoint(couponEndpoint, c.ID, uris...)
}

// Load implements the Resource interface.
func (c *Coupon) Load(s *Stripe) error {
	if err := required("coupon id", c.ID); err != nil {
		return err
	}
	return s.get(c.Endpoint(), c)
}
