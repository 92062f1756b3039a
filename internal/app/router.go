package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"travel/internal/handler"
	"travel/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	ListingHandler *handler.ListingHandler
	BookingHandler *handler.BookingHandler
	ReviewHandler  *handler.ReviewHandler
	PaymentHandler *handler.PaymentHandler
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes.
	api := router.Group("/api")
	{
		// Listing routes.
		listings := api.Group("/listings")
		{
			listings.POST("", deps.ListingHandler.Create)
			listings.GET("", deps.ListingHandler.GetAll)
			listings.GET("/:id", deps.ListingHandler.Get)
			listings.PUT("/:id", deps.ListingHandler.Update)
			listings.DELETE("/:id", deps.ListingHandler.Delete)
		}

		// Booking routes.
		bookings := api.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.GetAll)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.PUT("/:id", deps.BookingHandler.UpdateStatus)
			bookings.DELETE("/:id", deps.BookingHandler.Delete)
		}

		// Review routes.
		reviews := api.Group("/reviews")
		{
			reviews.POST("", deps.ReviewHandler.Create)
			reviews.GET("", deps.ReviewHandler.GetByListing)
			reviews.DELETE("/:id", deps.ReviewHandler.Delete)
		}

		// Payment routes.
		api.POST("/initiate-payment/", deps.PaymentHandler.InitiatePayment)
		api.POST("/reinitiate-payment/", deps.PaymentHandler.ReinitiatePayment)
		api.GET("/verify-payment/", deps.PaymentHandler.VerifyPayment)
	}

	return router
}
