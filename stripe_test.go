package stripe

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

const testSecret = "sk_test_123456"

// newTestStripe returns a Stripe client that sends all of its requests to a
// test server using the given handler.
func newTestStripe(t *testing.T, h http.HandlerFunc) *Stripe {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &Stripe{
		Client: NewClient(srv.URL, testSecret),
	}
}

// respond returns a handler that responds with the given status and body.
func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

// failHandler fails the test if any request is made to it.
func failHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request made: %s %s\n", r.Method, r.URL)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func Test_Params(t *testing.T) {
	tests := []struct {
		params   Params
		expected string
	}{
		{
			Params{"email": "me@example.com"},
			"email=me%40example.com",
		},
		{
			Params{
				"card": Params{
					"number":    "4242424242424242",
					"exp_month": 12,
				},
			},
			"card[exp_month]=12&card[number]=4242424242424242",
		},
		{
			Params{
				"customer": "cus_123456",
				"items": []Params{
					{"plan": "gold"},
				},
				"expand": []string{"customer"},
			},
			"customer=cus_123456&expand[0]=customer&items[0][plan]=gold",
		},
		{
			Params{
				"amount":   2000,
				"currency": "usd",
				"coupon":   nil,
			},
			"amount=2000&currency=usd",
		},
		{
			Params{"at_period_end": true},
			"at_period_end=true",
		},
	}

	for i, test := range tests {
		encoded := test.params.String()

		if encoded != test.expected {
			t.Errorf("tests[%d] - unexpected encoding, expected=%q, got=%q\n", i, test.expected, encoded)
		}

		body, err := encode(test.params)

		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s\n", i, err)
		}

		if body != test.expected {
			t.Errorf("tests[%d] - unexpected body, expected=%q, got=%q\n", i, test.expected, body)
		}
	}
}

func Test_NewClient(t *testing.T) {
	s := New(testSecret)

	if s.endpoint != "https://api.stripe.com/v1" {
		t.Errorf("unexpected endpoint, expected=%q, got=%q\n", "https://api.stripe.com/v1", s.endpoint)
	}

	if s.Timeout != 30*time.Second {
		t.Errorf("unexpected timeout, expected=%s, got=%s\n", 30*time.Second, s.Timeout)
	}

	c := NewClient("http://localhost:8080/v1/", testSecret)

	if c.endpoint != "http://localhost:8080/v1" {
		t.Errorf("unexpected endpoint, expected=%q, got=%q\n", "http://localhost:8080/v1", c.endpoint)
	}
}

func Test_ClientRequest(t *testing.T) {
	tests := []struct {
		method      string
		uri         string
		body        string
		contentType string
	}{
		{http.MethodGet, "/charges/ch_123456", "", ""},
		{http.MethodPost, "/charges", "amount=500&currency=usd", "application/x-www-form-urlencoded"},
		{http.MethodDelete, "/customers/cus_123456", "", ""},
	}

	for i, test := range tests {
		s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != test.method {
				t.Errorf("tests[%d] - unexpected method, expected=%q, got=%q\n", i, test.method, r.Method)
			}

			if r.URL.Path != test.uri {
				t.Errorf("tests[%d] - unexpected path, expected=%q, got=%q\n", i, test.uri, r.URL.Path)
			}

			if ua := r.Header.Get("User-Agent"); ua != userAgent {
				t.Errorf("tests[%d] - unexpected user agent, expected=%q, got=%q\n", i, userAgent, ua)
			}

			user, pass, ok := r.BasicAuth()

			if !ok || user != testSecret || pass != "" {
				t.Errorf("tests[%d] - unexpected basic auth, expected=%q, got=%q:%q\n", i, testSecret, user, pass)
			}

			if ct := r.Header.Get("Content-Type"); ct != test.contentType {
				t.Errorf("tests[%d] - unexpected content type, expected=%q, got=%q\n", i, test.contentType, ct)
			}

			b, _ := io.ReadAll(r.Body)

			if string(b) != test.body {
				t.Errorf("tests[%d] - unexpected body, expected=%q, got=%q\n", i, test.body, string(b))
			}
			io.WriteString(w, "{}")
		})

		var err error

		switch test.method {
		case http.MethodGet:
			_, err = s.Get(test.uri)
		case http.MethodPost:
			_, err = s.Post(test.uri, test.body)
		case http.MethodDelete:
			_, err = s.Delete(test.uri)
		}

		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s\n", i, err)
		}
	}
}

func Test_DecodeError(t *testing.T) {
	tests := []struct {
		status          int
		body            string
		expectedType    string
		expectedMessage string
		responseError   bool
	}{
		{
			http.StatusNotFound,
			`{"error": {"type": "invalid_request_error", "message": "No such plan: gold", "param": "id"}}`,
			"invalid_request_error",
			"No such plan: gold",
			false,
		},
		{
			http.StatusPaymentRequired,
			`{"error": {"type": "card_error", "message": "Your card was declined.", "code": "card_declined"}}`,
			"card_error",
			"Your card was declined.",
			false,
		},
		{
			http.StatusInternalServerError,
			`{"error": {"type": "api_error", "message": "Something went wrong."}}`,
			"api_error",
			"Something went wrong.",
			false,
		},
		{
			http.StatusBadGateway,
			`{"error": {"type": "api_error", "message": "Bad gateway."}}`,
			"",
			"",
			true,
		},
		{
			http.StatusBadRequest,
			`<html>Bad Request</html>`,
			"",
			"",
			true,
		},
		{
			http.StatusUnauthorized,
			`{}`,
			"",
			"",
			true,
		},
	}

	for i, test := range tests {
		s := newTestStripe(t, respond(test.status, test.body))

		_, err := s.Get("/plans/gold")

		if err == nil {
			t.Fatalf("tests[%d] - expected error, got nil\n", i)
		}

		if test.responseError {
			var rerr *ResponseError

			if !errors.As(err, &rerr) {
				t.Errorf("tests[%d] - unexpected error, expected=%T, got=%T\n", i, rerr, err)
				continue
			}

			if rerr.StatusCode != test.status {
				t.Errorf("tests[%d] - unexpected status, expected=%d, got=%d\n", i, test.status, rerr.StatusCode)
			}

			if rerr.Body != test.body {
				t.Errorf("tests[%d] - unexpected body, expected=%q, got=%q\n", i, test.body, rerr.Body)
			}
			continue
		}

		var serr *Error

		if !errors.As(err, &serr) {
			t.Errorf("tests[%d] - unexpected error, expected=%T, got=%T\n", i, serr, err)
			continue
		}

		if serr.StatusCode != test.status {
			t.Errorf("tests[%d] - unexpected status, expected=%d, got=%d\n", i, test.status, serr.StatusCode)
		}

		if string(serr.Err.Type) != test.expectedType {
			t.Errorf("tests[%d] - unexpected error type, expected=%q, got=%q\n", i, test.expectedType, serr.Err.Type)
		}

		if serr.Err.Message != test.expectedMessage {
			t.Errorf("tests[%d] - unexpected error message, expected=%q, got=%q\n", i, test.expectedMessage, serr.Err.Message)
		}
	}
}

func Test_PageParams(t *testing.T) {
	tests := []struct {
		offset   int
		count    int
		customer string
		expected string
		err      error
	}{
		{0, 10, "", "count=10&offset=0", nil},
		{20, 100, "cus_123456", "count=100&customer=cus_123456&offset=20", nil},
		{-1, 10, "", "", ErrOutOfRange},
		{0, 0, "", "", ErrOutOfRange},
		{0, 101, "", "", ErrOutOfRange},
	}

	for i, test := range tests {
		params, err := pageParams(test.offset, test.count, test.customer)

		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("tests[%d] - unexpected error, expected=%q, got=%q\n", i, test.err, err)
			}
			continue
		}

		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s\n", i, err)
		}

		if encoded := params.String(); encoded != test.expected {
			t.Errorf("tests[%d] - unexpected params, expected=%q, got=%q\n", i, test.expected, encoded)
		}
	}
}

func Test_ClientLog(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	s := newTestStripe(t, respond(http.StatusOK, "{}"))
	s.Log = log

	if _, err := s.Get("/customers/cus_123456"); err != nil {
		t.Fatal(err)
	}

	entry := hook.LastEntry()

	if entry == nil {
		t.Fatal("expected request to be logged, it was not")
	}

	if entry.Level != logrus.DebugLevel {
		t.Errorf("unexpected log level, expected=%s, got=%s\n", logrus.DebugLevel, entry.Level)
	}

	expected := map[string]interface{}{
		"method": http.MethodGet,
		"uri":    "/customers/cus_123456",
		"status": http.StatusOK,
	}

	for k, v := range expected {
		if entry.Data[k] != v {
			t.Errorf("unexpected log field %s, expected=%v, got=%v\n", k, v, entry.Data[k])
		}
	}
}

func Test_Stripe(t *testing.T) {
	secret := os.Getenv("STRIPE_SECRET")

	if secret == "" {
		t.Skip("STRIPE_SECRET not set, skipping")
	}

	s := New(secret)

	c, err := s.CreateCustomer(&CustomerInfo{
		Card: &CreditCardInfo{
			Number:   "4242424242424242",
			ExpMonth: 12,
			ExpYear:  time.Now().Add(time.Hour * 24 * 365).Year(),
			CVC:      "123",
		},
		Email:       "customer@stripe.test",
		Description: "Test customer",
	})

	if err != nil {
		t.Fatal(err)
	}

	defer s.DeleteCustomer(c.ID)

	ch, err := s.ChargeCustomer(1000, "usd", c.ID, "Test charge")

	if err != nil {
		t.Fatal(err)
	}

	if !ch.Paid {
		t.Fatalf("expected charge %s to be paid, it was not\n", ch.ID)
	}

	ch, err = s.RefundAmount(ch.ID, 400)

	if err != nil {
		t.Fatal(err)
	}

	if ch.AmountRefunded != 400 {
		t.Errorf("unexpected amount refunded, expected=%d, got=%d\n", 400, ch.AmountRefunded)
	}

	cc, err := s.GetCharges(0, 10, c.ID)

	if err != nil {
		t.Fatal(err)
	}

	if len(cc.Data) != 1 {
		t.Errorf("unexpected number of charges, expected=%d, got=%d\n", 1, len(cc.Data))
	}

	ok, err := s.PlanExists("plan_" + strconv.FormatInt(time.Now().Unix(), 10))

	if err != nil {
		t.Fatal(err)
	}

	if ok {
		t.Errorf("expected plan to not exist, it did\n")
	}
}
