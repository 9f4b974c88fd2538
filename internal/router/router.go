package router

import (
	"context"
	"time"

	"zapshift/config"
	"zapshift/internal/handler"
	"zapshift/internal/logger"
	"zapshift/internal/middleware"
	"zapshift/internal/repository"
	"zapshift/internal/service"
	"zapshift/internal/ws"
	"zapshift/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine. ctx
// bounds background work such as rate limiter eviction.
func Setup(ctx context.Context, cfg *config.Config, db *gorm.DB, provider payment.Provider, hub *ws.Hub, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.NewRateLimiter(100, 60*time.Second)
	go limiter.Run(ctx)

	r := gin.New()
	r.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log))
	r.Use(middleware.CORS())

	// Repositories
	parcelRepo := repository.NewParcelRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	tx := repository.NewTransactor(db)

	// Services
	notifSvc := service.NewNotificationService(hub)
	checkoutSvc := service.NewCheckoutService(parcelRepo, provider, cfg.Stripe.Currency, cfg.Site, log)
	reconcileSvc := service.NewReconcileService(provider, tx, notifSvc, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(db)
	parcelHandler := handler.NewParcelHandler(parcelRepo)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	paymentHandler := handler.NewPaymentHandler(reconcileSvc, paymentRepo)

	// Stripe delivers from a small set of shared IPs and is not rate limited.
	if cfg.Stripe.WebhookSecret != "" {
		webhookHandler := handler.NewStripeWebhookHandler(reconcileSvc, cfg.Stripe.WebhookSecret)
		r.POST("/webhooks/stripe", webhookHandler.Handle)
	}

	api := r.Group("/", middleware.RateLimit(limiter))
	{
		api.GET("/", healthHandler.Banner)
		api.GET("/healthz", healthHandler.Health)

		api.GET("/parcels", parcelHandler.List)
		api.POST("/parcels", parcelHandler.Create)
		api.GET("/parcels/:id", parcelHandler.Get)
		api.DELETE("/parcels/:id", parcelHandler.Delete)

		api.POST("/payment-checkout-session", checkoutHandler.CreateSession)
		api.PATCH("/payment-success", paymentHandler.Success)
		api.GET("/payments", paymentHandler.List)

		api.GET("/ws/parcels", ws.UpgradeParcelWS(hub, log))
	}

	return r
}
