package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shinyyama/realestate-backend/internal/apperr"
)

type stubOrders struct {
	body  map[string]interface{}
	err   error
	delay time.Duration
	got   map[string]interface{}
}

func (s *stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.got = data
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.body, s.err
}

func TestReceiptLabel(t *testing.T) {
	short := ReceiptLabel("b1", "p1")
	if short != "unlock_b1_p1" {
		t.Fatalf("got %q", short)
	}
	long := ReceiptLabel("5f0c6a52-8d1c-4c4b-9f7e-0a1b2c3d4e5f", "7d9e1f20-3a4b-4c5d-8e9f-a0b1c2d3e4f5")
	if len(long) != MaxReceiptLength {
		t.Fatalf("len=%d want %d", len(long), MaxReceiptLength)
	}
	if !strings.HasPrefix(long, "unlock_5f0c6a52") {
		t.Fatalf("got %q", long)
	}
	if long != ReceiptLabel("5f0c6a52-8d1c-4c4b-9f7e-0a1b2c3d4e5f", "7d9e1f20-3a4b-4c5d-8e9f-a0b1c2d3e4f5") {
		t.Fatalf("receipt must be deterministic")
	}
}

func TestCreateOrder(t *testing.T) {
	stub := &stubOrders{body: map[string]interface{}{
		"id": "order_abc", "amount": float64(9900), "currency": "INR", "receipt": "unlock_b_p", "status": "created",
	}}
	r := newRazorpay(stub, "rzp_key", "secret", "INR", time.Second)

	o, err := r.CreateOrder(context.Background(), 9900, "unlock_b_p")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.ID != "order_abc" || o.Amount != 9900 || o.Status != "created" {
		t.Fatalf("unexpected order %+v", o)
	}
	if stub.got["amount"] != int64(9900) || stub.got["currency"] != "INR" || stub.got["receipt"] != "unlock_b_p" {
		t.Fatalf("unexpected request %+v", stub.got)
	}
	if r.KeyID() != "rzp_key" {
		t.Fatalf("KeyID=%q", r.KeyID())
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	r := newRazorpay(&stubOrders{}, "k", "s", "INR", time.Second)
	if _, err := r.CreateOrder(context.Background(), 0, "unlock_x"); !apperr.IsKind(err, apperr.KindGateway) {
		t.Fatalf("zero amount: err=%v", err)
	}
	if _, err := r.CreateOrder(context.Background(), 100, strings.Repeat("x", MaxReceiptLength+1)); !apperr.IsKind(err, apperr.KindGateway) {
		t.Fatalf("long receipt: err=%v", err)
	}
}

func TestCreateOrderErrors(t *testing.T) {
	netErr := &url.Error{Op: "Post", URL: "https://api.razorpay.com/v1/orders", Err: timeoutErr{}}
	tests := []struct {
		name   string
		stub   *stubOrders
		status int
	}{
		{"provider rejects", &stubOrders{err: errors.New("BAD_REQUEST_ERROR: amount exceeds maximum")}, http.StatusBadRequest},
		{"network failure", &stubOrders{err: netErr}, http.StatusBadGateway},
		{"missing id", &stubOrders{body: map[string]interface{}{"status": "created"}}, http.StatusBadGateway},
		{"timeout", &stubOrders{delay: 200 * time.Millisecond, body: map[string]interface{}{"id": "late"}}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRazorpay(tt.stub, "k", "s", "INR", 20*time.Millisecond)
			_, err := r.CreateOrder(context.Background(), 9900, "unlock_b_p")
			ae, ok := apperr.As(err)
			if !ok {
				t.Fatalf("expected gateway error, got %v", err)
			}
			if ae.Kind != apperr.KindGateway || ae.Status != tt.status {
				t.Fatalf("kind=%s status=%d want %d", ae.Kind, ae.Status, tt.status)
			}
		})
	}
}

func TestRazorpayVerifySignature(t *testing.T) {
	r := newRazorpay(&stubOrders{}, "k", "secret", "INR", time.Second)
	if !r.VerifySignature("order_1", "pay_1", Sign("secret", "order_1", "pay_1")) {
		t.Fatalf("valid signature rejected")
	}
	if r.VerifySignature("order_1", "pay_1", Sign("other", "order_1", "pay_1")) {
		t.Fatalf("foreign signature accepted")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
