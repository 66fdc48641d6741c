package stripe

// Store provides an interface for keeping a record of the resources received
// from the Stripe API in an underlying data store such as a database. The
// Stripe client never reads from a Store, records are only put into one by
// the caller, or by a HookHandler as events are received.
type Store interface {
	// LookupCustomer will lookup the customer of the given ID. Whether or not
	// the customer could be found is denoted by the returned bool value.
	LookupCustomer(id string) (*Customer, bool, error)

	// Subscription returns the subscription for the customer of the given
	// ID. Whether or not the customer has a subscription will be denoted by
	// the returned bool value.
	Subscription(customer string) (*Subscription, bool, error)

	// Charges returns all of the charges for the customer of the given ID,
	// sorted from newest to oldest.
	Charges(customer string) ([]*Charge, error)

	// Invoices returns all of the invoices for the customer of the given ID,
	// sorted from newest to oldest.
	Invoices(customer string) ([]*Invoice, error)

	// LogEvent will store the given event ID in the underlying store. If the
	// given event ID already exists, then this should return ErrEventExists.
	LogEvent(string) error

	// ForgetEvent removes the given event ID from the underlying store, so
	// the event will be handled again if Stripe redelivers it.
	ForgetEvent(string) error

	// Put will put the given Resource into the underlying data store. If the
	// given Resource already exists in the data store, then that should simply
	// be updated. ErrUnknownResource should be returned for a Resource that
	// cannot be stored.
	Put(Resource) error

	// Remove will remove the given Resource from the underlying data store. If
	// the given Resource cannot be found then this returns nil.
	Remove(Resource) error
}
