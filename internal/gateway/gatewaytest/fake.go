// Package gatewaytest provides a scripted payment gateway for tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/shinyyama/realestate-backend/internal/gateway"
)

const (
	KeyID  = "rzp_test_key"
	Secret = "rzp_test_secret"
)

// Fake issues sequential order ids and verifies signatures with the real
// HMAC under Secret. CreateOrderFunc overrides order creation when set.
type Fake struct {
	CreateOrderFunc func(ctx context.Context, amount int64, receipt string) (*gateway.Order, error)

	mu       sync.Mutex
	seq      int
	Receipts []string
}

func (f *Fake) CreateOrder(ctx context.Context, amount int64, receipt string) (*gateway.Order, error) {
	f.mu.Lock()
	f.Receipts = append(f.Receipts, receipt)
	f.seq++
	n := f.seq
	f.mu.Unlock()
	if f.CreateOrderFunc != nil {
		return f.CreateOrderFunc(ctx, amount, receipt)
	}
	id := fmt.Sprintf("order_test_%d", n)
	return &gateway.Order{
		ID:       id,
		Amount:   amount,
		Currency: "INR",
		Receipt:  receipt,
		Status:   "created",
		Raw:      map[string]interface{}{"id": id, "amount": amount, "receipt": receipt},
	}, nil
}

func (f *Fake) VerifySignature(orderID, paymentID, signature string) bool {
	return gateway.VerifySignature(Secret, orderID, paymentID, signature)
}

func (f *Fake) KeyID() string {
	return KeyID
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Receipts)
}

// Sign returns the signature the provider would issue for the pair.
func Sign(orderID, paymentID string) string {
	return gateway.Sign(Secret, orderID, paymentID)
}
