package handlers

import (
	"errors"
	"net/http"

	"workhive/services/booking"
	"workhive/services/geo"
	"workhive/services/task"
	"workhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// respondError maps service errors to HTTP responses. Conflict codes tell
// the client to re-fetch and retry; validation codes tell it to fix input.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "TASK_NOT_FOUND", "Task not found", err.Error())

	case errors.Is(err, booking.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", err.Error())

	case errors.Is(err, task.ErrProviderNotFound), errors.Is(err, geo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found", err.Error())

	case errors.Is(err, task.ErrAlreadyConverted),
		errors.Is(err, booking.ErrTaskAlreadyConverted):
		utils.JSONError(c, http.StatusConflict, "TASK_ALREADY_CONVERTED",
			"Task already converted; operate on the booking instead", err.Error())

	case errors.Is(err, task.ErrNotRequested),
		errors.Is(err, booking.ErrTaskNotRequested):
		utils.JSONError(c, http.StatusConflict, "TASK_NOT_REQUESTED",
			"Task is not awaiting a provider response", err.Error())

	case errors.Is(err, task.ErrProviderNotMatched):
		utils.JSONError(c, http.StatusConflict, "PROVIDER_NOT_MATCHED",
			"Provider is not matched to this task", err.Error())

	case errors.Is(err, task.ErrTerminal):
		utils.JSONError(c, http.StatusConflict, "TASK_TERMINAL",
			"Task is in a terminal state", err.Error())

	case errors.Is(err, task.ErrNotOpen):
		utils.JSONError(c, http.StatusConflict, "TASK_NOT_OPEN",
			"Task is not open to provider interest", err.Error())

	case errors.Is(err, task.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "STATE_CONFLICT",
			"Task state changed; refresh and retry", err.Error())

	case errors.Is(err, booking.ErrTerminal):
		utils.JSONError(c, http.StatusConflict, "BOOKING_TERMINAL",
			"Booking is in a terminal state", err.Error())

	case errors.Is(err, booking.ErrInvalidState):
		utils.JSONError(c, http.StatusConflict, "BOOKING_INVALID_STATE",
			"Booking is not in the required state", err.Error())

	case errors.Is(err, booking.ErrNotAuthorized):
		utils.JSONError(c, http.StatusForbidden, "NOT_AUTHORIZED",
			"Actor is not permitted to perform this operation", err.Error())

	case errors.Is(err, geo.ErrGeocodeFailed):
		utils.JSONError(c, http.StatusBadGateway, "GEOCODE_FAILED",
			"Geocoding provider unavailable; please try again", err.Error())

	case errors.Is(err, geo.ErrInvalidPostalCode),
		errors.Is(err, geo.ErrCoordinatesMismatch),
		errors.Is(err, geo.ErrInvalidCoordinates):
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"Invalid location input", err.Error())

	case errors.Is(err, task.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"Invalid task input", err.Error())

	default:
		utils.JSONError(c, http.StatusInternalServerError, "INTERNAL",
			"Internal Server Error", err.Error())
	}
}

// bindAndValidate decodes the JSON body and applies the payload's
// validation tags, writing a field-level 400 on failure.
func bindAndValidate(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid input", err.Error())
		return false
	}
	if err := validate.Struct(payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid input", err.Error())
		return false
	}
	return true
}
