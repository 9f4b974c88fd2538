package handler

import (
	"fmt"
	"net/http"

	"zapshift/internal/domain"
	"zapshift/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CheckoutHandler struct {
	svc *service.CheckoutService
}

func NewCheckoutHandler(svc *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

type checkoutRequest struct {
	ParcelID    string          `json:"parcelId" binding:"required,uuid"`
	ParcelName  string          `json:"parcelName" binding:"max=255"`
	SenderEmail string          `json:"senderEmail" binding:"omitempty,email"`
	Cost        decimal.Decimal `json:"cost"`
}

// CreateSession opens a checkout session and returns its hosted URL.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err), nil)
		return
	}
	url, err := h.svc.Initiate(c.Request.Context(), service.CheckoutInput{
		ParcelID:    req.ParcelID,
		ParcelName:  req.ParcelName,
		SenderEmail: req.SenderEmail,
		Cost:        req.Cost,
	})
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
