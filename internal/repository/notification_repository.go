package repository

import (
	"context"

	"github.com/shinyyama/realestate-backend/internal/model"
	"gorm.io/gorm"
)

type NotificationFilter struct {
	UserID     string
	Type       string
	UnreadOnly bool
	Limit      int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// List returns the page plus the user's unread total, ignoring Type and UnreadOnly for the total.
	List(ctx context.Context, f NotificationFilter) ([]model.Notification, int64, error)
	// MarkRead marks ids read, or every unread row of the user when ids is empty.
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) List(ctx context.Context, f NotificationFilter) ([]model.Notification, int64, error) {
	if f.Limit <= 0 || f.Limit > 50 {
		f.Limit = 20
	}
	unread := r.unread(ctx, f.UserID)

	var cnt int64
	if err := unread.Count(&cnt).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if f.UnreadOnly {
		q = q.Where("read_at IS NULL")
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	var list []model.Notification
	if err := q.Order("created_at DESC").Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, cnt, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	q := r.unread(ctx, userID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("read_at", r.db.NowFunc())
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) unread(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ? AND read_at IS NULL", userID)
}
