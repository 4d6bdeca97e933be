package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/brian/tmov-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/brian/tmov-booking/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and their
// middleware.  Unauthenticated operations live under /api/auth, while the
// protected profile endpoint requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /api/auth prefix for operations that do
	// not require an existing session (register, login).
	g := e.Group("/api/auth")
	// Register a POST endpoint to handle member registration at /api/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle member login at /api/auth/login.
	g.POST("/login", a.Login)

	// The profile endpoint requires a valid access token.  JWTAuth parses the
	// Authorization header and stores the member id on the request context.
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterBookings registers the booking endpoints.  All mutating operations
// require a valid access token.  Booking creation additionally goes through
// the Redis-backed rate limiter so a single client cannot hammer the
// pessimistic lock path.  The occupied-seats browse endpoint is public so
// guests can inspect a showtime before logging in.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	// Public seat availability for a showtime.
	e.GET("/api/bookings/occupied", b.GetOccupiedSeats)

	// Create a route group for endpoints that require a valid access token.
	auth := e.Group("/api/bookings")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))

	// Register a POST endpoint to create a booking.  The rate limiter is
	// applied only here because creation is the contended write path.
	auth.POST("", b.CreateBooking, limit)
	// Register a POST endpoint to mark a booking as paid.
	auth.POST("/:id/pay", b.PayBooking)
	// Register a POST endpoint to cancel a booking and release its seats.
	auth.POST("/:id/cancel", b.CancelBooking)
	// Register a GET endpoint that lists the caller's own bookings.
	auth.GET("", b.ListMyBookings)
}
