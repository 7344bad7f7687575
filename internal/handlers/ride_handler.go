package handlers

import (
	"net/http"

	"unipool/internal/middleware"
	"unipool/internal/models"
	"unipool/internal/services"
	"unipool/internal/utils"
	"unipool/internal/validators"

	"github.com/gin-gonic/gin"
)

var rideSort = utils.SortSpec{
	Default: "departure_time",
	Order:   "asc",
	Allowed: map[string]string{
		"departureTime": "departure_time",
		"createdAt":     "created_at",
		"costPerSeat":   "cost_per_seat",
	},
}

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// CreateRide publishes a new ride offer
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req validators.RideCreateRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateRideCreate(&req)) {
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), &models.Ride{
		DriverID:      req.DriverID,
		VehicleID:     req.VehicleID,
		SourceLat:     req.SourceLat,
		SourceLng:     req.SourceLng,
		SourceAddress: req.SourceAddress,
		DestLat:       req.DestLat,
		DestLng:       req.DestLng,
		DestAddress:   req.DestAddress,
		DepartureTime: req.DepartureTime,
		SeatsTotal:    req.SeatsTotal,
		CostPerSeat:   req.CostPerSeat,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride created successfully", ride)
}

// ListRides lists a driver's rides, or all active rides when no driver is given
func (h *RideHandler) ListRides(c *gin.Context) {
	params := utils.GetPaginationParams(c, rideSort)
	driverID := c.Query("driverId")
	if driverID != "" && !validators.IsValidEntityID(driverID) {
		utils.ValidationErrorResponse(c, map[string]string{"driverId": "driverId is invalid"})
		return
	}

	rides, total, err := h.rideService.ListRides(c.Request.Context(), driverID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}
	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", map[string]interface{}{
		"rides": rides,
	}, meta)
}

func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved successfully", ride)
}

func (h *RideHandler) UpdateRideStatus(c *gin.Context) {
	var req validators.RideStatusRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateStruct(&req)) {
		return
	}

	ride, err := h.rideService.UpdateRideStatus(c.Request.Context(), c.Param("id"), middleware.UserID(c), models.RideStatus(req.Status))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride status updated successfully", ride)
}

// UpdateLocation records the driver's live position
func (h *RideHandler) UpdateLocation(c *gin.Context) {
	var req validators.RideLocationRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateStruct(&req)) {
		return
	}

	ride, err := h.rideService.UpdateLocation(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Lat, req.Lng)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", ride)
}

// DeleteRide removes a ride and rejects its outstanding bookings
func (h *RideHandler) DeleteRide(c *gin.Context) {
	if err := h.rideService.DeleteRide(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
