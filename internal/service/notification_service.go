package service

import (
	"context"
	"log"
	"time"

	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/reqctx"
)

type NotificationService interface {
	Notify(ctx context.Context, userID, typ, title, body string, propertyID, unlockID *string)
	List(ctx context.Context, f repository.NotificationFilter) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort: failures are logged, never returned.
func (s *notificationService) Notify(ctx context.Context, userID, typ, title, body string, propertyID, unlockID *string) {
	if userID == "" || typ == "" {
		return
	}
	ctx, cancel := withShortDeadline(ctx)
	defer cancel()
	n := &model.Notification{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Body:       body,
		PropertyID: propertyID,
		UnlockID:   unlockID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("[notify] rid=%s user=%s type=%s stage=create err=%v", reqctx.RID(ctx), userID, typ, err)
	}
}

func (s *notificationService) List(ctx context.Context, f repository.NotificationFilter) ([]model.Notification, int64, error) {
	if f.UserID == "" {
		return nil, 0, nil
	}
	return s.repo.List(ctx, f)
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if userID == "" {
		return 0, nil
	}
	n, err := s.repo.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	log.Printf("[notify] rid=%s user=%s stage=mark_read ids=%d updated=%d", reqctx.RID(ctx), userID, len(ids), n)
	return n, nil
}

func stringPtr(v string) *string {
	return &v
}

// withShortDeadline keeps side writes from holding up the request that triggered them.
func withShortDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 2*time.Second)
}
