package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/config"
	"github.com/shinyyama/realestate-backend/internal/gateway"
	"github.com/shinyyama/realestate-backend/internal/handler"
	appmw "github.com/shinyyama/realestate-backend/internal/middleware"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/service"
	"github.com/shinyyama/realestate-backend/internal/storage"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

// New wires every route. images may be nil when no bucket is configured.
func New(cfg *config.Config, db *gorm.DB, gw gateway.Gateway, verifier appmw.TokenVerifier, images storage.ImageStore) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(appmw.RequestContext)
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("60M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOrigins),
	}))

	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	notifySvc := service.NewNotificationService(repository.NewNotificationRepository(db))
	propertySvc := service.NewPropertyService(propertyRepo, images)
	unlockSvc := service.NewUnlockService(
		service.UnlockOptions{
			Price:          cfg.UnlockPrice,
			Currency:       cfg.Currency,
			Validity:       cfg.UnlockValidity,
			PreviewContact: cfg.PreviewContact,
		},
		gw,
		repository.NewPaymentRepository(db),
		repository.NewUnlockRepository(db),
		propertyRepo,
		userRepo,
		notifySvc,
	)

	propertyHandler := handler.NewPropertyHandler(propertySvc)
	paymentHandler := handler.NewPaymentHandler(unlockSvc)
	unlockHandler := handler.NewUnlockHandler(unlockSvc)
	notificationHandler := handler.NewNotificationHandler(notifySvc)

	auth := appmw.NewAuthMiddleware(verifier, userRepo).RequireAuth
	buyer := appmw.RequireRole(model.RoleBuyer)
	seller := appmw.RequireRole(model.RoleSeller)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    cfg.GitSHA,
			"build_time": cfg.BuildTime,
		})
	})

	api := e.Group("/api")
	if cfg.RateLimit > 0 {
		api.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(float64(cfg.RateLimit) / (15 * time.Minute).Seconds()),
				Burst:     cfg.RateLimit,
				ExpiresIn: 15 * time.Minute,
			}),
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again after 15 minutes.")
			},
		}))
	}

	api.GET("/properties", propertyHandler.List)
	api.GET("/properties/seller/my-listings", propertyHandler.ListMine, auth, seller)
	api.GET("/properties/:id", propertyHandler.Get)
	api.POST("/properties", propertyHandler.Create, auth, seller)
	api.PUT("/properties/:id", propertyHandler.Update, auth, seller)
	api.DELETE("/properties/:id", propertyHandler.Delete, auth, seller)
	api.POST("/properties/:id/images", propertyHandler.UploadImages, auth, seller)
	api.DELETE("/properties/:id/images/:imageId", propertyHandler.DeleteImage, auth, seller)

	api.POST("/payments/create-order", paymentHandler.CreateOrder, auth, buyer)
	api.POST("/payments/verify", paymentHandler.Verify, auth, buyer)
	api.GET("/payments/my-payments", paymentHandler.ListMine, auth, buyer)

	api.GET("/unlock/my-unlocks", unlockHandler.ListMine, auth, buyer)
	api.GET("/unlock/leads", unlockHandler.ListLeads, auth, seller)
	api.GET("/unlock/:propertyId", unlockHandler.SellerContact, auth, buyer)

	api.GET("/notifications", notificationHandler.List, auth)
	api.POST("/notifications/read", notificationHandler.MarkRead, auth)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return apperr.NotFound("Route " + c.Request().URL.Path + " not found.")
	})

	return &Server{e: e}
}

func allowOrigin(extra []string) func(origin string) (bool, error) {
	allowed := make(map[string]bool, len(extra))
	for _, o := range extra {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[strings.ToLower(o)] = true
		}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		return allowed[low], nil
	}
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
