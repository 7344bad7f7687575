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

var bookingSort = utils.SortSpec{
	Default: "created_at",
	Order:   "desc",
	Allowed: map[string]string{
		"createdAt": "created_at",
		"status":    "status",
	},
}

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// CreateBooking requests seats on a ride
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req validators.BookingCreateRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateBookingCreate(&req)) {
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), req.RideID, req.PassengerID, req.Seats())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateBookingStatus accepts, rejects or cancels a booking
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	var req validators.BookingTransitionRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateStruct(&req)) {
		return
	}

	booking, err := h.bookingService.TransitionBooking(
		c.Request.Context(),
		c.Param("id"),
		middleware.UserID(c),
		models.BookingStatus(req.Status),
	)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBooking returns one booking with its ride
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

// ListBookings lists a passenger's bookings, or every booking on a ride
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var query validators.BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if validationFailed(c, validators.ValidateBookingList(&query)) {
		return
	}

	if query.PassengerID != "" {
		params := utils.GetPaginationParams(c, bookingSort)
		bookings, total, err := h.bookingService.ListPassengerBookings(c.Request.Context(), query.PassengerID, params)
		if err != nil {
			utils.HandleError(c, err)
			return
		}

		meta := &utils.Meta{
			Pagination: utils.CreatePaginationMeta(params, total),
		}
		utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", map[string]interface{}{
			"bookings": bookings,
		}, meta)
		return
	}

	bookings, err := h.bookingService.ListRideBookings(c.Request.Context(), query.RideID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", map[string]interface{}{
		"bookings": bookings,
	}, &utils.Meta{Count: len(bookings)})
}
