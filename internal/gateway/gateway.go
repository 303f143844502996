// Package gateway adapts the hosted-checkout payment provider.
package gateway

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/shinyyama/realestate-backend/internal/apperr"
)

// MaxReceiptLength is the provider's limit on order receipt labels.
const MaxReceiptLength = 40

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	// Raw is the provider payload as returned, kept on the ledger entry.
	Raw map[string]interface{}
}

// Gateway creates checkout orders and proves that a payment claimed by a
// client was really authorized by the provider.
type Gateway interface {
	// CreateOrder performs one provider call; it never retries.
	CreateOrder(ctx context.Context, amount int64, receipt string) (*Order, error)
	// VerifySignature reports whether signature is the provider's signature
	// over orderID and paymentID. It never fails with an error.
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID is the public key the client needs to open checkout.
	KeyID() string
}

// ReceiptLabel derives a deterministic receipt for a buyer/property pair,
// truncated to the provider limit.
func ReceiptLabel(buyerID, propertyID string) string {
	label := "unlock_" + buyerID + "_" + propertyID
	if len(label) <= MaxReceiptLength {
		return label
	}
	label = label[:MaxReceiptLength]
	for !utf8.ValidString(label) {
		label = label[:len(label)-1]
	}
	return label
}

func validateOrderRequest(amount int64, receipt string) error {
	if amount <= 0 {
		return apperr.Gateway(http.StatusBadRequest, "order amount must be positive", nil)
	}
	if strings.TrimSpace(receipt) == "" || len(receipt) > MaxReceiptLength {
		return apperr.Gateway(http.StatusBadRequest, "invalid receipt label", nil)
	}
	return nil
}
