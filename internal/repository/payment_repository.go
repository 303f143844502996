package repository

import (
	"context"
	"time"

	"github.com/shinyyama/realestate-backend/internal/model"
	"gorm.io/gorm"
)

type MarkPaidParams struct {
	GatewayOrderID   string
	BuyerID          string
	PropertyID       string
	GatewayPaymentID string
	Signature        string
	PaidAt           time.Time
}

// PaymentRepository is the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	// MarkPaid moves the entry matching order+buyer+property from created to
	// paid in one conditional update. transitioned is false when the entry was
	// already paid. gorm.ErrRecordNotFound is returned when no created or paid
	// entry matches.
	MarkPaid(ctx context.Context, params MarkPaidParams) (p *model.Payment, transitioned bool, err error)
	FindByOrder(ctx context.Context, gatewayOrderID, buyerID, propertyID string) (*model.Payment, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepository) MarkPaid(ctx context.Context, params MarkPaidParams) (*model.Payment, bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("gateway_order_id = ? AND buyer_id = ? AND property_id = ? AND status = ?",
			params.GatewayOrderID, params.BuyerID, params.PropertyID, model.PaymentStatusCreated).
		Updates(map[string]interface{}{
			"status":             model.PaymentStatusPaid,
			"gateway_payment_id": params.GatewayPaymentID,
			"gateway_signature":  params.Signature,
			"paid_at":            params.PaidAt,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	var p model.Payment
	if err := r.db.WithContext(ctx).
		Where("gateway_order_id = ? AND buyer_id = ? AND property_id = ? AND status = ?",
			params.GatewayOrderID, params.BuyerID, params.PropertyID, model.PaymentStatusPaid).
		First(&p).Error; err != nil {
		return nil, false, err
	}
	return &p, res.RowsAffected > 0, nil
}

func (r *paymentRepository) FindByOrder(ctx context.Context, gatewayOrderID, buyerID, propertyID string) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).
		Where("gateway_order_id = ? AND buyer_id = ? AND property_id = ?", gatewayOrderID, buyerID, propertyID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.Payment, error) {
	var list []model.Payment
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
