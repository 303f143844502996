package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "created"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

const PaymentPurposeContactUnlock = "seller_contact_unlock"

// Payment is one ledger entry: a single purchase attempt by a buyer for one
// property. Only the server moves it from created to paid, after the gateway
// signature has been checked.
type Payment struct {
	ID               string         `gorm:"primaryKey;size:36"`
	BuyerID          string         `gorm:"column:buyer_id;size:36;index;not null"`
	PropertyID       string         `gorm:"column:property_id;size:36;index;not null"`
	GatewayOrderID   string         `gorm:"column:gateway_order_id;size:64;not null;uniqueIndex:uk_payments_gateway_order"`
	GatewayPaymentID *string        `gorm:"column:gateway_payment_id;size:64"`
	GatewaySignature *string        `gorm:"column:gateway_signature;size:128"`
	Amount           int64          `gorm:"column:amount;not null"`
	Currency         string         `gorm:"column:currency;size:3;not null;default:INR"`
	Status           PaymentStatus  `gorm:"column:status;size:16;not null;default:created"`
	Purpose          string         `gorm:"column:purpose;size:64;not null;default:seller_contact_unlock"`
	GatewayOrder     datatypes.JSON `gorm:"column:gateway_order"`
	PaidAt           *time.Time     `gorm:"column:paid_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
