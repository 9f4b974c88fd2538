package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"zapshift/internal/domain"
	"zapshift/internal/logger"
	"zapshift/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

type StripeWebhookHandler struct {
	reconciler *service.ReconcileService
	secret     string
}

func NewStripeWebhookHandler(reconciler *service.ReconcileService, secret string) *StripeWebhookHandler {
	return &StripeWebhookHandler{reconciler: reconciler, secret: secret}
}

// Handle verifies the Stripe-Signature header and reconciles completed
// checkout sessions. Events that a redelivery cannot fix are acknowledged
// with 200; server-side failures answer 500 so Stripe retries them.
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	log := logger.FromGin(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	event, err := webhook.ConstructEventWithOptions(body, c.GetHeader("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn("stripe webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil || cs.ID == "" {
			log.Warn("stripe webhook: unreadable checkout session", zap.String("event_id", event.ID), zap.Error(err))
			break
		}
		res, err := h.reconciler.Reconcile(c.Request.Context(), cs.ID)
		if err != nil {
			if retryable(err) {
				fail(c, err, gin.H{"received": false})
				return
			}
			log.Warn("stripe webhook: event dropped",
				zap.String("event_id", event.ID),
				zap.String("session_id", cs.ID),
				zap.String("kind", domain.Kind(err)),
				zap.Error(err))
			break
		}
		log.Info("stripe webhook: reconciled",
			zap.String("event_id", event.ID),
			zap.String("session_id", cs.ID),
			zap.Bool("success", res.Success),
			zap.String("reason", res.Reason))
	default:
		log.Debug("stripe webhook: ignored event", zap.String("type", string(event.Type)))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// retryable reports whether redelivering the event could succeed.
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput)
}
