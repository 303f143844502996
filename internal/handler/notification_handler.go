package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	PropertyID *string `json:"propertyId,omitempty"`
	UnlockID   *string `json:"unlockId,omitempty"`
	Read       bool    `json:"read"`
	CreatedAt  string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Body:       n.Body,
		PropertyID: n.PropertyID,
		UnlockID:   n.UnlockID,
		Read:       n.ReadAt != nil,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	f := repository.NotificationFilter{
		UserID:     uid,
		Type:       c.QueryParam("type"),
		UnreadOnly: c.QueryParam("unread_only") != "false",
		Limit:      20,
	}
	if lStr := c.QueryParam("limit"); lStr != "" {
		if lParsed, err := strconv.Atoi(lStr); err == nil && lParsed > 0 {
			f.Limit = lParsed
		}
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"notifications": resp,
		"unreadCount":   unreadCount,
	})
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

// MarkRead marks the listed ids read, or everything when the body has none.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req markReadRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("Invalid request body.")
		}
	}
	updated, err := h.svc.MarkRead(c.Request().Context(), uid, req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "updated": updated})
}
