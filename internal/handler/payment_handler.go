package handler

import (
	"fmt"
	"net/http"

	"zapshift/internal/domain"
	"zapshift/internal/repository"
	"zapshift/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	reconciler *service.ReconcileService
	payments   *repository.PaymentRepository
}

func NewPaymentHandler(reconciler *service.ReconcileService, payments *repository.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{reconciler: reconciler, payments: payments}
}

type paymentSuccessQuery struct {
	SessionID string `form:"session_id" binding:"required,max=255"`
}

// Success reconciles the session the provider redirected back with. It is
// safe to call repeatedly: only the first call for a paid session succeeds.
func (h *PaymentHandler) Success(c *gin.Context) {
	var q paymentSuccessQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err), gin.H{"success": false})
		return
	}
	res, err := h.reconciler.Reconcile(c.Request.Context(), q.SessionID)
	if err != nil {
		fail(c, err, gin.H{"success": false})
		return
	}
	if !res.Success {
		c.JSON(http.StatusOK, gin.H{"success": false, "reason": res.Reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"updatedParcel": res.Parcel,
		"trackingId":    res.TrackingID,
		"transactionId": res.TransactionID,
		"paymentRecord": res.Payment,
	})
}

type listPaymentsQuery struct {
	Email string `form:"email" binding:"omitempty,max=255"`
}

// List returns payment history, newest first.
func (h *PaymentHandler) List(c *gin.Context) {
	var q listPaymentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err), nil)
		return
	}
	payments, err := h.payments.ListByEmail(c.Request.Context(), q.Email)
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, payments)
}
