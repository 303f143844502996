package repository

import (
	"context"
	"time"

	"github.com/shinyyama/realestate-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlockRepository stores access grants. Validity is decided at read time by
// comparing expires_at with the caller's clock; nothing is ever reaped.
type UnlockRepository interface {
	// Upsert creates or refreshes the single grant for u's buyer/property and
	// returns the stored row.
	Upsert(ctx context.Context, u *model.Unlock) (*model.Unlock, error)
	FindActive(ctx context.Context, buyerID, propertyID string, now time.Time) (*model.Unlock, error)
	ListActiveByBuyer(ctx context.Context, buyerID string, now time.Time) ([]model.Unlock, error)
	ListActiveBySeller(ctx context.Context, sellerID string, now time.Time) ([]model.Unlock, error)
}

type unlockRepository struct {
	db *gorm.DB
}

func NewUnlockRepository(db *gorm.DB) UnlockRepository {
	return &unlockRepository{db: db}
}

func (r *unlockRepository) Upsert(ctx context.Context, u *model.Unlock) (*model.Unlock, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "buyer_id"}, {Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"seller_id", "payment_id", "expires_at", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, err
	}
	var stored model.Unlock
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND property_id = ?", u.BuyerID, u.PropertyID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *unlockRepository) FindActive(ctx context.Context, buyerID, propertyID string, now time.Time) (*model.Unlock, error) {
	var u model.Unlock
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND property_id = ? AND expires_at > ?", buyerID, propertyID, now).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *unlockRepository) ListActiveByBuyer(ctx context.Context, buyerID string, now time.Time) ([]model.Unlock, error) {
	var list []model.Unlock
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND expires_at > ?", buyerID, now).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *unlockRepository) ListActiveBySeller(ctx context.Context, sellerID string, now time.Time) ([]model.Unlock, error) {
	var list []model.Unlock
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND expires_at > ?", sellerID, now).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
