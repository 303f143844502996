package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/service"
)

type UnlockHandler struct {
	svc service.UnlockService
}

func NewUnlockHandler(svc service.UnlockService) *UnlockHandler {
	return &UnlockHandler{svc: svc}
}

type ContactResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type UnlockResponse struct {
	ID            string                   `json:"id"`
	PropertyID    string                   `json:"propertyId"`
	Property      *PropertySummaryResponse `json:"property"`
	UnlockedUntil string                   `json:"unlockedUntil"`
	CreatedAt     string                   `json:"createdAt"`
}

type LeadResponse struct {
	ID            string                   `json:"id"`
	Buyer         ContactResponse          `json:"buyer"`
	Property      *PropertySummaryResponse `json:"property"`
	UnlockedAt    string                   `json:"unlockedAt"`
	UnlockedUntil string                   `json:"unlockedUntil"`
}

func (h *UnlockHandler) SellerContact(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	res, err := h.svc.SellerContact(c.Request().Context(), uid, c.Param("propertyId"))
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"success": true,
		"seller": ContactResponse{
			Name:  res.Seller.Name,
			Email: res.Seller.Email,
			Phone: res.Seller.Phone,
		},
		"unlockedUntil": nil,
	}
	if res.UnlockedUntil != nil {
		body["unlockedUntil"] = res.UnlockedUntil.Format(time.RFC3339)
	}
	if res.Preview {
		body["preview"] = true
	}
	return c.JSON(http.StatusOK, body)
}

func (h *UnlockHandler) ListMine(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.svc.ListUnlocks(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	resp := make([]UnlockResponse, 0, len(list))
	for _, u := range list {
		resp = append(resp, UnlockResponse{
			ID:            u.Unlock.ID,
			PropertyID:    u.Unlock.PropertyID,
			Property:      toPropertySummaryResponse(u.Property),
			UnlockedUntil: u.Unlock.ExpiresAt.Format(time.RFC3339),
			CreatedAt:     u.Unlock.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(resp),
		"unlocks": resp,
	})
}

func (h *UnlockHandler) ListLeads(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.svc.ListLeads(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	resp := make([]LeadResponse, 0, len(list))
	for _, l := range list {
		resp = append(resp, LeadResponse{
			ID:            l.UnlockID,
			Buyer:         ContactResponse{Name: l.Buyer.Name, Email: l.Buyer.Email, Phone: l.Buyer.Phone},
			Property:      toPropertySummaryResponse(l.Property),
			UnlockedAt:    l.UnlockedAt.Format(time.RFC3339),
			UnlockedUntil: l.UnlockedUntil.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(resp),
		"leads":   resp,
	})
}
