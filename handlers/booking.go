package handlers

import (
	"net/http"

	"workhive/models"
	"workhive/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking execution endpoints.
type BookingHandler struct {
	Svc    booking.Service
	Logger *zap.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(svc booking.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

// GetBooking handles GET /bookings/:bookingId.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// StartBooking handles POST /bookings/:bookingId/start.
func (h *BookingHandler) StartBooking(c *gin.Context) {
	var input struct {
		ProviderID string `json:"providerId" validate:"required"`
	}
	if !bindAndValidate(c, &input) {
		return
	}

	b, err := h.Svc.Start(c.Request.Context(), c.Param("bookingId"), input.ProviderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CompleteBooking handles POST /bookings/:bookingId/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	var input models.CompleteBookingInput
	if !bindAndValidate(c, &input) {
		return
	}

	b, err := h.Svc.Complete(c.Request.Context(), c.Param("bookingId"), input.ProviderID, input.FinalPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles POST /bookings/:bookingId/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var input models.CancelBookingInput
	if !bindAndValidate(c, &input) {
		return
	}

	b, err := h.Svc.Cancel(c.Request.Context(), c.Param("bookingId"), input.ActorID, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListClientBookings handles GET /bookings/client/:clientId.
func (h *BookingHandler) ListClientBookings(c *gin.Context) {
	bookings, err := h.Svc.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListProviderBookings handles GET /bookings/provider/:providerId.
func (h *BookingHandler) ListProviderBookings(c *gin.Context) {
	bookings, err := h.Svc.ListByProvider(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// BookingStats handles GET /bookings/stats, the per-status aggregate
// consumed by the reporting subsystem.
func (h *BookingHandler) BookingStats(c *gin.Context) {
	counts, err := h.Svc.CountByStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}
