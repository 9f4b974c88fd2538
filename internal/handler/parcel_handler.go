package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"zapshift/internal/domain"
	"zapshift/internal/models"
	"zapshift/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ParcelHandler struct {
	repo *repository.ParcelRepository
}

func NewParcelHandler(repo *repository.ParcelRepository) *ParcelHandler {
	return &ParcelHandler{repo: repo}
}

// createParcelRequest is the flat parcel document posted by the dashboard.
// Known keys are typed; the rest is kept verbatim as shipping attributes.
type createParcelRequest struct {
	ParcelName  string          `json:"parcelName" binding:"required,max=255"`
	SenderEmail string          `json:"senderEmail" binding:"required,email,max=255"`
	Cost        decimal.Decimal `json:"cost"`
	Attributes  map[string]any  `json:"-"`
}

// serverOwned keys are never taken from the request body.
var serverOwned = []string{"_id", "createdAt", "updatedAt", "paymentStatus", "trackingId"}

func (r *createParcelRequest) UnmarshalJSON(data []byte) error {
	type known createParcelRequest
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	var rest map[string]any
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	for _, key := range append([]string{"parcelName", "senderEmail", "cost"}, serverOwned...) {
		delete(rest, key)
	}
	*r = createParcelRequest(k)
	r.Attributes = rest
	return nil
}

type listParcelsQuery struct {
	Email string `form:"email" binding:"omitempty,max=255"`
}

func (h *ParcelHandler) List(c *gin.Context) {
	var q listParcelsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err), nil)
		return
	}
	parcels, err := h.repo.List(c.Request.Context(), q.Email)
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, parcels)
}

func (h *ParcelHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err, nil)
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ParcelHandler) Create(c *gin.Context) {
	var req createParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err), nil)
		return
	}
	if req.Cost.IsNegative() {
		fail(c, fmt.Errorf("cost must not be negative: %w", domain.ErrInvalidInput), nil)
		return
	}
	p := &models.Parcel{
		ParcelName:  req.ParcelName,
		SenderEmail: req.SenderEmail,
		Cost:        req.Cost,
		Attributes:  req.Attributes,
	}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"acknowledged": true, "insertedId": p.ID, "parcel": p})
}

func (h *ParcelHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err, nil)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "deletedCount": 1})
}
