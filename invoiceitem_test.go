package stripe

import (
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
)

func Test_InvoiceItemEncode(t *testing.T) {
	tests := []struct {
		enc      Encoder
		expected string
		err      error
	}{
		{
			&InvoiceItemInfo{Customer: "cus_123456", Amount: 1000, Description: "Setup fee"},
			"customer=cus_123456&amount=1000&currency=usd&description=Setup+fee",
			nil,
		},
		{
			&InvoiceItemInfo{Customer: "cus_123456", Amount: 1000, Currency: "eur"},
			"customer=cus_123456&amount=1000&currency=eur",
			nil,
		},
		{
			&InvoiceItemUpdateInfo{Amount: 300, Description: "Extra"},
			"amount=300&description=Extra",
			nil,
		},
		{
			&InvoiceItemUpdateInfo{Amount: 300, Currency: "usd"},
			"",
			ErrInvalidArgument,
		},
		{
			&InvoiceItemUpdateInfo{Amount: 300, Customer: "cus_123456"},
			"",
			ErrInvalidArgument,
		},
	}

	for i, test := range tests {
		encoded, err := encode(test.enc)

		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("tests[%d] - unexpected error, expected=%q, got=%q\n", i, test.err, err)
			}
			continue
		}

		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s\n", i, err)
		}

		if encoded != test.expected {
			t.Errorf("tests[%d] - unexpected encoding, expected=%q, got=%q\n", i, test.expected, encoded)
		}
	}
}

func Test_UpdateInvoiceItem(t *testing.T) {
	var hits int32

	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)

		if r.Method != http.MethodPost || r.URL.Path != "/invoiceitems/ii_123456" {
			t.Errorf("unexpected request, expected=%q, got=%q\n", "POST /invoiceitems/ii_123456", r.Method+" "+r.URL.Path)
		}

		b, _ := io.ReadAll(r.Body)

		if string(b) != "amount=300" {
			t.Errorf("unexpected body, expected=%q, got=%q\n", "amount=300", string(b))
		}
		io.WriteString(w, `{"id": "ii_123456", "object": "invoiceitem", "amount": 300, "currency": "usd", "customer": "cus_123456"}`)
	})

	if _, err := s.UpdateInvoiceItem("ii_123456", &InvoiceItemUpdateInfo{Customer: "cus_123456", Amount: 300}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unexpected error, expected=%q, got=%q\n", ErrInvalidArgument, err)
	}

	if _, err := s.UpdateInvoiceItem("ii_123456", &InvoiceItemUpdateInfo{Currency: "usd", Amount: 300}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unexpected error, expected=%q, got=%q\n", ErrInvalidArgument, err)
	}

	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("unexpected number of requests made, expected=%d, got=%d\n", 0, n)
	}

	it, err := s.UpdateInvoiceItem("ii_123456", &InvoiceItemUpdateInfo{Amount: 300})

	if err != nil {
		t.Fatal(err)
	}

	if it.Amount != 300 {
		t.Errorf("unexpected amount, expected=%d, got=%d\n", 300, it.Amount)
	}
}

func Test_InvoiceItemArguments(t *testing.T) {
	s := newTestStripe(t, failHandler(t))

	tests := []struct {
		fn  func() error
		err error
	}{
		{func() error { _, err := s.CreateInvoiceItem(nil); return err }, ErrInvalidArgument},
		{func() error { _, err := s.CreateInvoiceItem(&InvoiceItemInfo{Amount: 100}); return err }, ErrInvalidArgument},
		{func() error { _, err := s.UpdateInvoiceItem("", &InvoiceItemUpdateInfo{}); return err }, ErrInvalidArgument},
		{func() error { _, err := s.UpdateInvoiceItem("ii_123456", nil); return err }, ErrInvalidArgument},
		{func() error { _, err := s.GetInvoiceItem(""); return err }, ErrInvalidArgument},
		{func() error { _, err := s.DeleteInvoiceItem(""); return err }, ErrInvalidArgument},
		{func() error { _, err := s.GetInvoiceItems(0, 0, ""); return err }, ErrOutOfRange},
	}

	for i, test := range tests {
		if err := test.fn(); !errors.Is(err, test.err) {
			t.Errorf("tests[%d] - unexpected error, expected=%q, got=%q\n", i, test.err, err)
		}
	}
}
