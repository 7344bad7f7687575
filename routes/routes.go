package routes

import (
	"unipool/internal/handlers"
	"unipool/internal/middleware"
	"unipool/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Booking   *handlers.BookingHandler
	Ride      *handlers.RideHandler
	Chat      *handlers.ChatHandler
	Review    *handlers.ReviewHandler
	Stats     *handlers.StatsHandler
	Geocode   *handlers.GeocodeHandler
	Realtime  *handlers.RealtimeHandler
	Health    *handlers.HealthHandler
	WebSocket *websocket.Handler
}

// Setup mounts the API under /api. Mutating ride and booking routes require
// a caller identity; the services also enforce ownership.
func Setup(r *gin.Engine, h *Handlers, websocketPath string) {
	r.GET("/health", h.Health.Health)
	if h.WebSocket != nil {
		r.GET(websocketPath, h.WebSocket.HandleWebSocket)
	}

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)

	SetupBookingRoutes(api, h.Booking)
	SetupRideRoutes(api, h.Ride)
	SetupChatRoutes(api, h.Chat)

	api.POST("/reviews", h.Review.CreateReview)
	api.GET("/users/:id/reviews", h.Review.GetUserReviews)
	api.GET("/stats/:userId", h.Stats.GetStats)

	geocode := api.Group("/geocode")
	{
		geocode.GET("/search", h.Geocode.Search)
		geocode.GET("/reverse", h.Geocode.Reverse)
	}

	api.GET("/auth/realtime", h.Realtime.IssueToken)
}

func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("", bookingHandler.ListBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PATCH("/:id", middleware.RequireIdentity(), bookingHandler.UpdateBookingStatus)
	}
}

func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler) {
	rides := r.Group("/rides")
	{
		rides.POST("", rideHandler.CreateRide)
		rides.GET("", rideHandler.ListRides)
		rides.GET("/:id", rideHandler.GetRide)
	}

	owned := rides.Group("")
	owned.Use(middleware.RequireIdentity())
	{
		owned.PATCH("/:id/status", rideHandler.UpdateRideStatus)
		owned.PATCH("/:id/location", rideHandler.UpdateLocation)
		owned.DELETE("/:id", rideHandler.DeleteRide)
	}
}

func SetupChatRoutes(r *gin.RouterGroup, chatHandler *handlers.ChatHandler) {
	chat := r.Group("/chat")
	{
		chat.POST("", chatHandler.SendMessage)
		chat.POST("/read", chatHandler.MarkRead)
		chat.GET("/:bookingId", chatHandler.GetMessages)
	}
}
