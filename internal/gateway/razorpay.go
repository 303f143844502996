package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/reqctx"
)

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Razorpay struct {
	orders   orderCreator
	keyID    string
	secret   string
	currency string
	timeout  time.Duration
}

func NewRazorpay(keyID, keySecret, currency string, timeout time.Duration) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	return newRazorpay(client.Order, keyID, keySecret, currency, timeout)
}

func newRazorpay(orders orderCreator, keyID, keySecret, currency string, timeout time.Duration) *Razorpay {
	if currency == "" {
		currency = "INR"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Razorpay{orders: orders, keyID: keyID, secret: keySecret, currency: currency, timeout: timeout}
}

func (r *Razorpay) KeyID() string {
	return r.keyID
}

func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(r.secret, orderID, paymentID, signature)
}

func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, receipt string) (*Order, error) {
	if err := validateOrderRequest(amount, receipt); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data := map[string]interface{}{
		"amount":          amount,
		"currency":        r.currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	type result struct {
		body map[string]interface{}
		err  error
	}
	// The SDK call takes no context; the buffered channel lets an abandoned
	// call finish without leaking the goroutine forever.
	ch := make(chan result, 1)
	start := time.Now()
	go func() {
		body, err := r.orders.Create(data, nil)
		ch <- result{body: body, err: err}
	}()

	rid := reqctx.RID(ctx)
	select {
	case <-ctx.Done():
		log.Printf("[gateway] rid=%s stage=create_order_timeout receipt=%s elapsedMs=%d", rid, receipt, time.Since(start).Milliseconds())
		return nil, apperr.Gateway(http.StatusBadGateway, "payment provider did not respond", ctx.Err())
	case res := <-ch:
		if res.err != nil {
			log.Printf("[gateway] rid=%s stage=create_order_fail receipt=%s err=%v", rid, receipt, res.err)
			return nil, classify(res.err)
		}
		order, err := orderFromResponse(res.body)
		if err != nil {
			return nil, err
		}
		log.Printf("[gateway] rid=%s stage=create_order_ok order=%s elapsedMs=%d", rid, order.ID, time.Since(start).Milliseconds())
		return order, nil
	}
}

// classify maps transport failures to 502 and provider rejections to 400.
func classify(err error) error {
	var ne net.Error
	if errors.As(err, &ne) {
		return apperr.Gateway(http.StatusBadGateway, "payment provider unreachable", err)
	}
	return apperr.Gateway(http.StatusBadRequest, "payment provider rejected the order", err)
}

func orderFromResponse(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, apperr.Gateway(http.StatusBadGateway, "payment provider returned no order id", fmt.Errorf("response: %v", body))
	}
	o := &Order{ID: id, Raw: body}
	switch v := body["amount"].(type) {
	case float64:
		o.Amount = int64(v)
	case int64:
		o.Amount = v
	case int:
		o.Amount = int64(v)
	}
	o.Currency, _ = body["currency"].(string)
	o.Receipt, _ = body["receipt"].(string)
	o.Status, _ = body["status"].(string)
	return o, nil
}
