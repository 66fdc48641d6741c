package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	stripelib "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
)

// HookHandlerFunc is the handler function that is registered against an
// event. This is like an http.HandlerFunc, only the first argument it is
// passed is the decoded event sent from Stripe.
type HookHandlerFunc func(stripelib.Event, http.ResponseWriter, *http.Request)

// HookHandler provides a way of registering handlers against the different
// events emitted by Stripe. If a Store is given, then each event is only
// handled once, and the charges, customers, invoices, and subscriptions sent
// in the events are put into the Store.
type HookHandler struct {
	mu     sync.RWMutex
	errh   func(error)
	secret string
	store  Store
	events map[string]HookHandlerFunc
}

// NewHookHandler returns a HookHandler using the given secret for request
// verification, and the given callback for handling any errors that occur
// during request verification.
func NewHookHandler(secret string, s Store, errh func(error)) *HookHandler {
	if errh == nil {
		errh = func(error) {}
	}

	return &HookHandler{
		mu:     sync.RWMutex{},
		errh:   errh,
		secret: secret,
		store:  s,
		events: make(map[string]HookHandlerFunc),
	}
}

// eventResource decodes the object sent in the given event into the Resource
// it represents. The returned bool denotes whether the Resource was deleted.
// A nil Resource is returned for the events that carry nothing that can be
// stored.
func eventResource(event stripelib.Event) (Resource, bool, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, false, nil
	}

	var obj struct {
		Object string `json:"object"`
	}

	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s event %s: %w", event.Type, event.ID, err)
	}

	var r Resource

	// Events such as customer.card.created and customer.discount.created
	// carry objects other than the customer, so the object type decides.
	switch obj.Object {
	case "charge":
		r = &Charge{}
	case "customer":
		r = &Customer{}
	case "invoice":
		r = &Invoice{}
	case "subscription":
		r = &Subscription{}
	default:
		return nil, false, nil
	}

	if err := json.Unmarshal(event.Data.Raw, r); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s event %s: %w", event.Type, event.ID, err)
	}

	deleted := event.Type == "customer.deleted" || event.Type == "customer.subscription.deleted"
	return r, deleted, nil
}

// mirror puts the object in the given event into the Store.
func (h *HookHandler) mirror(event stripelib.Event) error {
	r, deleted, err := eventResource(event)

	if err != nil {
		h.errh(err)
		return nil
	}

	if r == nil {
		return nil
	}

	if deleted {
		return h.store.Remove(r)
	}

	if err := h.store.Put(r); err != nil {
		if errors.Is(err, ErrUnknownResource) {
			return nil
		}
		return err
	}
	return nil
}

// Handle registers a new handler for the given event. If a handler was
// already registered against the given event, then that handler will be
// overwritten with the new handler.
func (h *HookHandler) Handle(event string, fn HookHandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[event] = fn
}

// HandlerFunc should be registered in the route multiplexer being used to
// register routes in the web server. For example,
//
//     mux := http.NewServeMux()
//     mux.HandleFunc("/stripe-hook", hook.HandlerFunc)
//
// this would cause the HookHandler to handle all of the requests sent to the
// "/stripe-hook" endpoint. Events that have already been logged in the Store
// are responded to with 202 Accepted, and are not handled again.
func (h *HookHandler) HandlerFunc(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)

	if err != nil {
		h.errh(err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.secret)

	if err != nil {
		h.errh(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if h.store != nil {
		if err := h.store.LogEvent(event.ID); err != nil {
			if !errors.Is(err, ErrEventExists) {
				h.errh(err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusAccepted)
			return
		}

		if err := h.mirror(event); err != nil {
			h.errh(err)

			if err := h.store.ForgetEvent(event.ID); err != nil {
				h.errh(err)
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	h.mu.RLock()
	fn, ok := h.events[event.Type]
	h.mu.RUnlock()

	if ok {
		fn(event, w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}
