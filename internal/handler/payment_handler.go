package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/service"
)

type PaymentHandler struct {
	svc service.UnlockService
}

func NewPaymentHandler(svc service.UnlockService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type createOrderRequest struct {
	PropertyID string `json:"propertyId"`
}

type verifyPaymentRequest struct {
	OrderID    string `json:"razorpay_order_id"`
	PaymentID  string `json:"razorpay_payment_id"`
	Signature  string `json:"razorpay_signature"`
	PropertyID string `json:"propertyId"`
}

type PropertySummaryResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	Price        int64    `json:"price,omitempty"`
	Images       []string `json:"images,omitempty"`
}

type PaymentResponse struct {
	ID            string                   `json:"id"`
	PropertyID    string                   `json:"propertyId"`
	Property      *PropertySummaryResponse `json:"property"`
	OrderID       string                   `json:"orderId"`
	PaymentID     *string                  `json:"gatewayPaymentId,omitempty"`
	Amount        int64                    `json:"amount"`
	AmountDisplay string                   `json:"amountDisplay"`
	Currency      string                   `json:"currency"`
	Status        string                   `json:"status"`
	Purpose       string                   `json:"purpose"`
	PaidAt        *string                  `json:"paidAt,omitempty"`
	CreatedAt     string                   `json:"createdAt"`
}

func toPropertySummaryResponse(p *service.PropertySummary) *PropertySummaryResponse {
	if p == nil {
		return nil
	}
	return &PropertySummaryResponse{
		ID:           p.ID,
		Title:        p.Title,
		City:         p.City,
		PropertyType: string(p.PropertyType),
		Price:        p.Price,
		Images:       p.Images,
	}
}

// toPaymentResponse leaves out the gateway signature.
func toPaymentResponse(s service.PaymentSummary) PaymentResponse {
	p := s.Payment
	var paidAt *string
	if p.PaidAt != nil {
		val := p.PaidAt.Format(time.RFC3339)
		paidAt = &val
	}
	return PaymentResponse{
		ID:            p.ID,
		PropertyID:    p.PropertyID,
		Property:      toPropertySummaryResponse(s.Property),
		OrderID:       p.GatewayOrderID,
		PaymentID:     p.GatewayPaymentID,
		Amount:        p.Amount,
		AmountDisplay: s.AmountDisplay,
		Currency:      p.Currency,
		Status:        string(p.Status),
		Purpose:       p.Purpose,
		PaidAt:        paidAt,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var body createOrderRequest
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	res, err := h.svc.CreateOrder(c.Request().Context(), uid, strings.TrimSpace(body.PropertyID))
	if err != nil {
		return err
	}
	if res.AlreadyUnlocked {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":         true,
			"alreadyUnlocked": true,
			"message":         "You have already unlocked this seller's contact.",
		})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":   true,
		"orderId":   res.OrderID,
		"amount":    res.Amount,
		"currency":  res.Currency,
		"paymentId": res.PaymentID,
		"keyId":     res.KeyID,
	})
}

func (h *PaymentHandler) Verify(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var body verifyPaymentRequest
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	err = h.svc.VerifyPayment(c.Request().Context(), service.VerifyPaymentInput{
		BuyerID:    uid,
		PropertyID: strings.TrimSpace(body.PropertyID),
		OrderID:    strings.TrimSpace(body.OrderID),
		PaymentID:  strings.TrimSpace(body.PaymentID),
		Signature:  strings.TrimSpace(body.Signature),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Payment verified. Seller contact is now unlocked.",
	})
}

func (h *PaymentHandler) ListMine(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.svc.ListPayments(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	resp := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toPaymentResponse(p))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"count":    len(resp),
		"payments": resp,
	})
}
