package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/prorate/internal/api/dto"
	"github.com/eshaffer321/prorate/internal/application/service"
	"github.com/eshaffer321/prorate/internal/domain/allocator"
)

// AllocationsHandler serves discount allocation requests.
type AllocationsHandler struct {
	service *service.DiscountService
}

// NewAllocationsHandler creates a new allocations handler.
func NewAllocationsHandler(svc *service.DiscountService) *AllocationsHandler {
	return &AllocationsHandler{service: svc}
}

// Create allocates the posted bill's discount and returns the bill with
// every line's ratio and discount amount filled in.
//
// POST /api/allocations?precision=2
func (h *AllocationsHandler) Create(c *gin.Context) {
	precision, err := precisionParam(c)
	if err != nil {
		_ = c.Error(err)
		WriteError(c, http.StatusBadRequest, dto.ConfigurationError(err.Error()))
		return
	}

	var bill allocator.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		_ = c.Error(err)
		WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid bill: "+err.Error()))
		return
	}

	result, err := h.service.Allocate(c.Request.Context(), bill, precision)
	if err != nil {
		_ = c.Error(err)
		status, apiErr := allocationError(err)
		WriteError(c, status, apiErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Verify checks an already allocated bill and reports whether its ratios
// and discount amounts add up.
//
// POST /api/allocations/verify
func (h *AllocationsHandler) Verify(c *gin.Context) {
	var bill allocator.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		_ = c.Error(err)
		WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid bill: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.service.Verify(c.Request.Context(), bill))
}

// precisionParam reads the optional precision query parameter.
func precisionParam(c *gin.Context) (*int, error) {
	raw, ok := c.GetQuery("precision")
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &allocator.ConfigurationError{Option: "precision", Value: raw, Err: allocator.ErrInvalidPrecision}
	}
	p, err := allocator.PrecisionFromFloat(f)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// allocationError maps allocator failures onto HTTP responses.
func allocationError(err error) (int, dto.APIError) {
	var (
		cfgErr *allocator.ConfigurationError
		valErr *allocator.ValidationError
		recErr *allocator.ReconciliationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest, dto.ConfigurationError(err.Error())
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity, dto.ValidationError(err.Error())
	case errors.As(err, &recErr):
		return http.StatusInternalServerError, dto.ReconciliationError(err.Error())
	default:
		return http.StatusInternalServerError, dto.InternalError()
	}
}
