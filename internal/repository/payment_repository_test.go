package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/testutil"
	"gorm.io/gorm"
)

func seedPayment(t *testing.T, repo PaymentRepository, orderID string, status model.PaymentStatus) *model.Payment {
	t.Helper()
	p := &model.Payment{
		BuyerID:        "buyer",
		PropertyID:     "prop",
		GatewayOrderID: orderID,
		Amount:         9900,
		Currency:       "INR",
		Status:         status,
		Purpose:        model.PaymentPurposeContactUnlock,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return p
}

func TestMarkPaidTransitionsOnce(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewPaymentRepository(gdb)
	ctx := context.Background()
	created := seedPayment(t, repo, "order_abc", model.PaymentStatusCreated)
	params := MarkPaidParams{
		GatewayOrderID: "order_abc", BuyerID: "buyer", PropertyID: "prop",
		GatewayPaymentID: "pay_1", Signature: "sig", PaidAt: time.Now().UTC(),
	}

	p, transitioned, err := repo.MarkPaid(ctx, params)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !transitioned || p.ID != created.ID || p.Status != model.PaymentStatusPaid {
		t.Fatalf("unexpected result transitioned=%v payment=%+v", transitioned, p)
	}
	if p.GatewayPaymentID == nil || *p.GatewayPaymentID != "pay_1" || p.GatewaySignature == nil || *p.GatewaySignature != "sig" {
		t.Fatalf("gateway fields not stored: %+v", p)
	}

	again, transitioned, err := repo.MarkPaid(ctx, params)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if transitioned || again.ID != created.ID {
		t.Fatalf("replay must be a no-op, transitioned=%v", transitioned)
	}
}

func TestMarkPaidRequiresMatchingBuyerAndProperty(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewPaymentRepository(gdb)
	ctx := context.Background()
	seedPayment(t, repo, "order_abc", model.PaymentStatusCreated)

	tests := []struct {
		name   string
		params MarkPaidParams
	}{
		{"other property", MarkPaidParams{GatewayOrderID: "order_abc", BuyerID: "buyer", PropertyID: "elsewhere"}},
		{"other buyer", MarkPaidParams{GatewayOrderID: "order_abc", BuyerID: "intruder", PropertyID: "prop"}},
		{"unknown order", MarkPaidParams{GatewayOrderID: "order_zzz", BuyerID: "buyer", PropertyID: "prop"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := repo.MarkPaid(ctx, tt.params)
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}

	p, err := repo.FindByOrder(ctx, "order_abc", "buyer", "prop")
	if err != nil {
		t.Fatalf("FindByOrder: %v", err)
	}
	if p.Status != model.PaymentStatusCreated {
		t.Fatalf("unrelated attempts changed status to %s", p.Status)
	}
}

func TestMarkPaidIgnoresRefunded(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewPaymentRepository(gdb)
	seedPayment(t, repo, "order_r", model.PaymentStatusRefunded)

	_, _, err := repo.MarkPaid(context.Background(), MarkPaidParams{GatewayOrderID: "order_r", BuyerID: "buyer", PropertyID: "prop"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("refunded entry must not become paid, err=%v", err)
	}
}

func TestListByBuyerNewestFirst(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewPaymentRepository(gdb)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"order_old", "order_new", "order_mid"} {
		offset := map[string]time.Duration{"order_old": 0, "order_mid": time.Hour, "order_new": 2 * time.Hour}[id]
		p := &model.Payment{BuyerID: "buyer", PropertyID: "prop", GatewayOrderID: id, Amount: int64(100 + i), Currency: "INR", Status: model.PaymentStatusCreated, Purpose: model.PaymentPurposeContactUnlock, CreatedAt: base.Add(offset)}
		if err := gdb.Create(p).Error; err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, err := repo.ListByBuyer(context.Background(), "buyer")
	if err != nil {
		t.Fatalf("ListByBuyer: %v", err)
	}
	if len(list) != 3 || list[0].GatewayOrderID != "order_new" || list[2].GatewayOrderID != "order_old" {
		t.Fatalf("unexpected order %v", list)
	}
}
