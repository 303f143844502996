package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/reqctx"
	"gorm.io/gorm"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

const genericMessage = "Something went wrong. Please try again later."

// ErrorHandler is installed as echo's HTTPErrorHandler. Operational errors
// keep their status and message; anything else is logged and hidden behind
// a generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, code, msg := http.StatusInternalServerError, "internal_error", genericMessage

	var he *echo.HTTPError
	switch ae, ok := apperr.As(err); {
	case ok:
		status, code, msg = ae.Status, string(ae.Kind), ae.Message
	case errors.As(err, &he):
		status, code = he.Code, codeForStatus(he.Code)
		msg = fmt.Sprint(he.Message)
		if he.Code >= http.StatusInternalServerError {
			msg = genericMessage
		}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		status, code, msg = http.StatusConflict, string(apperr.KindConflict), "Resource already exists."
	case errors.Is(err, gorm.ErrRecordNotFound):
		status, code, msg = http.StatusNotFound, string(apperr.KindNotFound), "Resource not found."
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[http] rid=%s method=%s path=%s status=%d err=%v",
			reqctx.RID(c.Request().Context()), c.Request().Method, c.Path(), status, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, NewErrorResponse(code, msg))
	}
	if err != nil {
		log.Printf("[http] write error response: %v", err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return string(apperr.KindValidation)
	case http.StatusUnauthorized:
		return string(apperr.KindUnauthorized)
	case http.StatusForbidden:
		return string(apperr.KindForbidden)
	case http.StatusNotFound:
		return string(apperr.KindNotFound)
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return string(apperr.KindConflict)
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	return "internal_error"
}

func currentUser(c echo.Context) (string, error) {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return "", apperr.Unauthorized("You are not logged in. Please log in to access this.")
	}
	return uid, nil
}
