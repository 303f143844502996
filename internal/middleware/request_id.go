package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/reqctx"
)

// RequestContext copies echo's request id into the request context so
// service log lines carry it.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid == "" {
			rid = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		if rid != "" {
			c.SetRequest(c.Request().WithContext(reqctx.WithRID(c.Request().Context(), rid)))
		}
		return next(c)
	}
}
