package stripe

import "sync"

type TestStore struct {
	mu            sync.Mutex
	customers     map[string]*Customer
	charges       map[string][]*Charge
	invoices      map[string][]*Invoice
	subscriptions map[string]*Subscription
	events        map[string]struct{}
}

var _ Store = (*TestStore)(nil)

func newTestStore() *TestStore {
	return &TestStore{
		customers:     make(map[string]*Customer),
		charges:       make(map[string][]*Charge),
		invoices:      make(map[string][]*Invoice),
		subscriptions: make(map[string]*Subscription),
		events:        make(map[string]struct{}),
	}
}

func (s *TestStore) LookupCustomer(id string) (*Customer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	return c, ok, nil
}

func (s *TestStore) Subscription(customer string) (*Subscription, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[customer]
	return sub, ok, nil
}

func (s *TestStore) Charges(customer string) ([]*Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.charges[customer], nil
}

func (s *TestStore) Invoices(customer string) ([]*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.invoices[customer], nil
}

func (s *TestStore) LogEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; ok {
		return ErrEventExists
	}
	s.events[id] = struct{}{}
	return nil
}

func (s *TestStore) ForgetEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.events, id)
	return nil
}

func (s *TestStore) Put(r Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := r.(type) {
	case *Customer:
		s.customers[v.ID] = v
	case *Charge:
		s.charges[v.Customer] = append(s.charges[v.Customer], v)
	case *Invoice:
		s.invoices[v.Customer] = append(s.invoices[v.Customer], v)
	case *Subscription:
		s.subscriptions[v.Customer] = v
	default:
		return ErrUnknownResource
	}
	return nil
}

func (s *TestStore) Remove(r Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := r.(type) {
	case *Customer:
		delete(s.customers, v.ID)
	case *Subscription:
		delete(s.subscriptions, v.Customer)
	}
	return nil
}
