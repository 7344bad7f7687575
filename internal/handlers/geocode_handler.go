package handlers

import (
	"strconv"

	"unipool/internal/services"
	"unipool/internal/utils"

	"github.com/gin-gonic/gin"
)

type GeocodeHandler struct {
	geocodeService services.GeocodeService
}

func NewGeocodeHandler(geocodeService services.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeService: geocodeService,
	}
}

// Search resolves an address to coordinates. Data is null when nothing matches.
func (h *GeocodeHandler) Search(c *gin.Context) {
	place, err := h.geocodeService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Geocoding completed", place)
}

func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		utils.ValidationErrorResponse(c, map[string]string{
			"lat": "lat and lng must be numbers",
		})
		return
	}

	place, err := h.geocodeService.Reverse(c.Request.Context(), lat, lng)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reverse geocoding completed", place)
}
