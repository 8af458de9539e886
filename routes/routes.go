package routes

import (
	"net/http"
	"time"

	"workhive/handlers"
	"workhive/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the endpoint handlers the router wires up.
type Handlers struct {
	Task    *handlers.TaskHandler
	Booking *handlers.BookingHandler
	Geo     *handlers.GeoHandler
}

// RegisterRoutes sets up all API routes.
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	registerHealthRoute(r)
	registerTaskRoutes(r, h)
	registerBookingRoutes(r, h)
	registerGeoRoutes(r, h)
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

func registerTaskRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/tasks")
	{
		api.POST("", h.Task.CreateTask)
		api.GET("", h.Task.ListTasks)
		api.GET("/:taskId", h.Task.GetTask)
		api.GET("/:taskId/with-booking", h.Task.GetTaskWithBooking)
		api.PATCH("/:taskId", h.Task.UpdateTask)
		api.DELETE("/:taskId", h.Task.DeleteTask)
		api.POST("/:taskId/restore", h.Task.RestoreTask)
		api.POST("/:taskId/request-provider", h.Task.RequestProvider)
		api.POST("/:taskId/respond", h.Task.Respond)
		api.POST("/:taskId/express-interest", h.Task.ExpressInterest)
		api.POST("/:taskId/rematch", h.Task.Rematch)
		api.POST("/:taskId/cancel", h.Task.CancelTask)
	}
}

func registerBookingRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/bookings")
	{
		api.GET("/stats", h.Booking.BookingStats)
		api.GET("/client/:clientId", h.Booking.ListClientBookings)
		api.GET("/provider/:providerId", h.Booking.ListProviderBookings)
		api.GET("/:bookingId", h.Booking.GetBooking)
		api.POST("/:bookingId/start", h.Booking.StartBooking)
		api.POST("/:bookingId/complete", h.Booking.CompleteBooking)
		api.POST("/:bookingId/cancel", h.Booking.CancelBooking)
	}
}

func registerGeoRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/geo")
	{
		api.GET("/geocode", h.Geo.GeocodeAddress)
		api.GET("/reverse", h.Geo.ReverseGeocode)
		api.GET("/nearby", h.Geo.NearbySearch)
		api.POST("/verify", h.Geo.VerifyLocation)
		api.POST("/enrich", h.Geo.EnrichLocation)
	}
}
