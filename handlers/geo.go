package handlers

import (
	"net/http"
	"strconv"

	"workhive/models"
	"workhive/services/geo"
	"workhive/utils"

	"github.com/gin-gonic/gin"
)

// GeoHandler serves geocoding and location verification endpoints.
type GeoHandler struct {
	Svc geo.Service
}

// NewGeoHandler creates a GeoHandler.
func NewGeoHandler(svc geo.Service) *GeoHandler {
	return &GeoHandler{Svc: svc}
}

// GeocodeAddress handles GET /geo/geocode?address=...
func (h *GeoHandler) GeocodeAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"Missing required query parameter: address", "")
		return
	}

	result, err := h.Svc.GeocodeAddress(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReverseGeocode handles GET /geo/reverse?latitude=...&longitude=...
func (h *GeoHandler) ReverseGeocode(c *gin.Context) {
	coords, ok := coordsFromQuery(c)
	if !ok {
		return
	}

	loc, err := h.Svc.ReverseGeocode(c.Request.Context(), coords)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// NearbySearch handles GET /geo/nearby?latitude=...&longitude=...&query=...&radiusKm=...
func (h *GeoHandler) NearbySearch(c *gin.Context) {
	coords, ok := coordsFromQuery(c)
	if !ok {
		return
	}
	query := c.Query("query")
	radiusKm, err := strconv.ParseFloat(c.DefaultQuery("radiusKm", "2"), 64)
	if err != nil || radiusKm <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid radiusKm", "")
		return
	}

	places, err := h.Svc.NearbySearch(c.Request.Context(), coords, query, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}

// VerifyLocation handles POST /geo/verify.
func (h *GeoHandler) VerifyLocation(c *gin.Context) {
	var input struct {
		PostalCode  string             `json:"postalCode" validate:"required"`
		Coordinates models.Coordinates `json:"coordinates"`
	}
	if !bindAndValidate(c, &input) {
		return
	}

	result, err := h.Svc.VerifyLocation(c.Request.Context(), input.PostalCode, input.Coordinates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// EnrichLocation handles POST /geo/enrich.
func (h *GeoHandler) EnrichLocation(c *gin.Context) {
	var input struct {
		PostalCode  string              `json:"postalCode" validate:"required"`
		Coordinates *models.Coordinates `json:"coordinates"`
		Landmark    string              `json:"landmark" validate:"max=200"`
	}
	if !bindAndValidate(c, &input) {
		return
	}

	loc, err := h.Svc.EnrichLocation(c.Request.Context(), input.PostalCode, input.Coordinates, input.Landmark)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func coordsFromQuery(c *gin.Context) (models.Coordinates, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("longitude"), 64)
	if errLat != nil || errLng != nil {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"Missing or invalid query parameters: latitude, longitude", "")
		return models.Coordinates{}, false
	}
	coords := models.Coordinates{Latitude: lat, Longitude: lng}
	if err := coords.Validate(); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid coordinates", err.Error())
		return models.Coordinates{}, false
	}
	return coords, true
}
