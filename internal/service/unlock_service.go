package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/gateway"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/reqctx"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UnlockOptions carries the server-side pricing and disclosure settings.
// Clients never influence any of them.
type UnlockOptions struct {
	Price    int64
	Currency string
	Validity time.Duration
	// PreviewContact reveals seller contact without a grant. Demo deployments only.
	PreviewContact bool
	Now            func() time.Time
}

type CreateOrderResult struct {
	AlreadyUnlocked bool
	OrderID         string
	Amount          int64
	Currency        string
	PaymentID       string
	KeyID           string
}

type VerifyPaymentInput struct {
	BuyerID    string
	PropertyID string
	OrderID    string
	PaymentID  string
	Signature  string
}

type SellerContact struct {
	Seller        model.Contact
	UnlockedUntil *time.Time
	Preview       bool
}

// PropertySummary is the slice of a listing shown next to payments, grants
// and leads. It never carries the seller reference.
type PropertySummary struct {
	ID           string
	Title        string
	City         string
	PropertyType model.PropertyType
	Price        int64
	Images       []string
}

type PaymentSummary struct {
	Payment       model.Payment
	AmountDisplay string
	Property      *PropertySummary
}

type UnlockSummary struct {
	Unlock   model.Unlock
	Property *PropertySummary
}

type Lead struct {
	UnlockID      string
	Buyer         model.Contact
	Property      *PropertySummary
	UnlockedAt    time.Time
	UnlockedUntil time.Time
}

type UnlockService interface {
	CreateOrder(ctx context.Context, buyerID, propertyID string) (*CreateOrderResult, error)
	VerifyPayment(ctx context.Context, in VerifyPaymentInput) error
	SellerContact(ctx context.Context, buyerID, propertyID string) (*SellerContact, error)
	ListPayments(ctx context.Context, buyerID string) ([]PaymentSummary, error)
	ListUnlocks(ctx context.Context, buyerID string) ([]UnlockSummary, error)
	ListLeads(ctx context.Context, sellerID string) ([]Lead, error)
}

type unlockService struct {
	opts         UnlockOptions
	gw           gateway.Gateway
	paymentRepo  repository.PaymentRepository
	unlockRepo   repository.UnlockRepository
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	notifier     NotificationService
}

func NewUnlockService(
	opts UnlockOptions,
	gw gateway.Gateway,
	paymentRepo repository.PaymentRepository,
	unlockRepo repository.UnlockRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
) UnlockService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &unlockService{
		opts:         opts,
		gw:           gw,
		paymentRepo:  paymentRepo,
		unlockRepo:   unlockRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

func (s *unlockService) CreateOrder(ctx context.Context, buyerID, propertyID string) (*CreateOrderResult, error) {
	rid := reqctx.RID(ctx)
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return nil, apperr.Validation("Property ID is required.")
	}
	prop, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Property not found or no longer active.")
		}
		return nil, err
	}
	if prop.Status != model.PropertyStatusActive {
		return nil, apperr.NotFound("Property not found or no longer active.")
	}
	if prop.SellerID == buyerID {
		return nil, apperr.Forbidden("You cannot unlock your own property contact.")
	}

	now := s.opts.Now()
	if _, err := s.unlockRepo.FindActive(ctx, buyerID, propertyID, now); err == nil {
		log.Printf("[unlock] rid=%s buyer=%s property=%s stage=create_order already_unlocked=true", rid, buyerID, propertyID)
		return &CreateOrderResult{AlreadyUnlocked: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	order, err := s.gw.CreateOrder(ctx, s.opts.Price, gateway.ReceiptLabel(buyerID, propertyID))
	if err != nil {
		log.Printf("[unlock] rid=%s buyer=%s property=%s stage=gateway_order err=%v", rid, buyerID, propertyID, err)
		return nil, err
	}

	currency := order.Currency
	if currency == "" {
		currency = s.opts.Currency
	}
	p := &model.Payment{
		BuyerID:        buyerID,
		PropertyID:     propertyID,
		GatewayOrderID: order.ID,
		Amount:         s.opts.Price,
		Currency:       currency,
		Status:         model.PaymentStatusCreated,
		Purpose:        model.PaymentPurposeContactUnlock,
	}
	if order.Raw != nil {
		if raw, err := json.Marshal(order.Raw); err == nil {
			p.GatewayOrder = datatypes.JSON(raw)
		}
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("payment order already recorded", err)
		}
		return nil, err
	}
	log.Printf("[unlock] rid=%s buyer=%s property=%s stage=order_created order=%s payment=%s amount=%d", rid, buyerID, propertyID, order.ID, p.ID, p.Amount)

	return &CreateOrderResult{
		OrderID:   order.ID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		PaymentID: p.ID,
		KeyID:     s.gw.KeyID(),
	}, nil
}

func (s *unlockService) VerifyPayment(ctx context.Context, in VerifyPaymentInput) error {
	rid := reqctx.RID(ctx)
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" || in.PropertyID == "" {
		return apperr.Validation("All payment fields are required.")
	}
	// A bad signature leaves the ledger entry at created.
	if !s.gw.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		log.Printf("[unlock] rid=%s buyer=%s order=%s stage=verify signature=invalid", rid, in.BuyerID, in.OrderID)
		return apperr.Validation("Payment verification failed. Invalid signature.")
	}

	now := s.opts.Now()
	payment, transitioned, err := s.paymentRepo.MarkPaid(ctx, repository.MarkPaidParams{
		GatewayOrderID:   in.OrderID,
		BuyerID:          in.BuyerID,
		PropertyID:       in.PropertyID,
		GatewayPaymentID: in.PaymentID,
		Signature:        in.Signature,
		PaidAt:           now,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Payment record not found.")
		}
		return err
	}

	prop, err := s.propertyRepo.FindByID(ctx, payment.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Property not found.")
		}
		return err
	}

	grant, err := s.upsertGrant(ctx, &model.Unlock{
		BuyerID:    in.BuyerID,
		PropertyID: in.PropertyID,
		SellerID:   prop.SellerID,
		PaymentID:  payment.ID,
		ExpiresAt:  now.Add(s.opts.Validity),
	})
	if err != nil {
		return err
	}
	log.Printf("[unlock] rid=%s buyer=%s property=%s stage=verified order=%s first=%v expires=%s",
		rid, in.BuyerID, in.PropertyID, in.OrderID, transitioned, grant.ExpiresAt.Format(time.RFC3339))

	if transitioned && s.notifier != nil {
		s.notifier.Notify(ctx, prop.SellerID, model.NotificationTypeContactUnlocked,
			"A buyer unlocked your contact",
			fmt.Sprintf("Someone paid to view your contact details for %q.", prop.Title),
			stringPtr(prop.ID), stringPtr(grant.ID))
	}
	return nil
}

// upsertGrant retries once when a concurrent insert wins the unique index.
func (s *unlockService) upsertGrant(ctx context.Context, u *model.Unlock) (*model.Unlock, error) {
	attempt := *u
	grant, err := s.unlockRepo.Upsert(ctx, &attempt)
	if err == nil {
		return grant, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	log.Printf("[unlock] rid=%s buyer=%s property=%s stage=grant_upsert retry=1", reqctx.RID(ctx), u.BuyerID, u.PropertyID)
	retry := *u
	retry.ID = ""
	grant, err = s.unlockRepo.Upsert(ctx, &retry)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("could not record access grant", err)
		}
		return nil, err
	}
	return grant, nil
}

func (s *unlockService) SellerContact(ctx context.Context, buyerID, propertyID string) (*SellerContact, error) {
	now := s.opts.Now()
	grant, err := s.unlockRepo.FindActive(ctx, buyerID, propertyID, now)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if grant == nil {
		if !s.opts.PreviewContact {
			return nil, apperr.Forbidden("You have not unlocked this seller's contact yet. Please complete payment first.")
		}
		prop, err := s.propertyRepo.FindByID(ctx, propertyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("Property not found.")
			}
			return nil, err
		}
		contact, err := s.sellerContact(ctx, prop.SellerID)
		if err != nil {
			return nil, err
		}
		log.Printf("[unlock] rid=%s buyer=%s property=%s stage=contact preview=true", reqctx.RID(ctx), buyerID, propertyID)
		return &SellerContact{Seller: *contact, Preview: true}, nil
	}

	contact, err := s.sellerContact(ctx, grant.SellerID)
	if err != nil {
		return nil, err
	}
	until := grant.ExpiresAt
	return &SellerContact{Seller: *contact, UnlockedUntil: &until}, nil
}

func (s *unlockService) sellerContact(ctx context.Context, sellerID string) (*model.Contact, error) {
	c, err := s.userRepo.FindContact(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Seller account no longer exists.")
		}
		return nil, err
	}
	return c, nil
}

func (s *unlockService) ListPayments(ctx context.Context, buyerID string) ([]PaymentSummary, error) {
	payments, err := s.paymentRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.PropertyID)
	}
	props, err := s.propertyRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentSummary, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentSummary{
			Payment:       p,
			AmountDisplay: FormatMinorUnits(p.Amount),
			Property:      summarize(props, p.PropertyID),
		})
	}
	return out, nil
}

func (s *unlockService) ListUnlocks(ctx context.Context, buyerID string) ([]UnlockSummary, error) {
	grants, err := s.unlockRepo.ListActiveByBuyer(ctx, buyerID, s.opts.Now())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.PropertyID)
	}
	props, err := s.propertyRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UnlockSummary, 0, len(grants))
	for _, g := range grants {
		out = append(out, UnlockSummary{Unlock: g, Property: summarize(props, g.PropertyID)})
	}
	return out, nil
}

func (s *unlockService) ListLeads(ctx context.Context, sellerID string) ([]Lead, error) {
	grants, err := s.unlockRepo.ListActiveBySeller(ctx, sellerID, s.opts.Now())
	if err != nil {
		return nil, err
	}
	propIDs := make([]string, 0, len(grants))
	buyerIDs := make([]string, 0, len(grants))
	for _, g := range grants {
		propIDs = append(propIDs, g.PropertyID)
		buyerIDs = append(buyerIDs, g.BuyerID)
	}
	props, err := s.propertyRepo.FindByIDs(ctx, propIDs)
	if err != nil {
		return nil, err
	}
	buyers, err := s.userRepo.FindContacts(ctx, buyerIDs)
	if err != nil {
		return nil, err
	}
	out := make([]Lead, 0, len(grants))
	for _, g := range grants {
		buyer, ok := buyers[g.BuyerID]
		if !ok {
			continue
		}
		out = append(out, Lead{
			UnlockID:      g.ID,
			Buyer:         buyer,
			Property:      summarize(props, g.PropertyID),
			UnlockedAt:    g.UpdatedAt,
			UnlockedUntil: g.ExpiresAt,
		})
	}
	return out, nil
}

func summarize(props map[string]model.Property, id string) *PropertySummary {
	p, ok := props[id]
	if !ok {
		return nil
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.ImageURL)
	}
	return &PropertySummary{
		ID:           p.ID,
		Title:        p.Title,
		City:         p.Location.City,
		PropertyType: p.PropertyType,
		Price:        p.Price,
		Images:       images,
	}
}

// FormatMinorUnits renders paise as rupees, e.g. 9900 -> "99.00".
func FormatMinorUnits(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
