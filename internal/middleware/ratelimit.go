package middleware

import (
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/brian/tmov-booking/internal/config"
)

// NewBookingRateLimit returns a fixed-window rate limiter keyed by the
// authenticated member (falling back to the client IP). It protects
// the booking-creation endpoint from seat-grabbing scripts hammering
// the per-schedule lock. When rate limiting is disabled or Redis is
// unavailable, the middleware is a no-op so bookings keep working.
func NewBookingRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    window := cfg.Window
    if window <= 0 {
        window = time.Minute
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := fmt.Sprintf("%s:%s:%d", cfg.Prefix, clientKey(c), time.Now().Unix()/int64(window.Seconds()))

            ctx := c.Request().Context()
            // INCR+EXPIRE in one round trip. The window key expires on
            // its own, so there is no cleanup to run.
            pipe := rdb.TxPipeline()
            count := pipe.Incr(ctx, key)
            pipe.Expire(ctx, key, window)
            if _, err := pipe.Exec(ctx); err != nil {
                // Redis trouble must not block bookings.
                return next(c)
            }
            if count.Val() > int64(cfg.MaxRequests) {
                c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many booking attempts, slow down"})
            }
            return next(c)
        }
    }
}

// clientKey prefers the authenticated member id over the remote IP so
// limits follow the account, not the NAT.
func clientKey(c echo.Context) string {
    if v := c.Get("member_id"); v != nil {
        return fmt.Sprintf("m%v", v)
    }
    return "ip" + c.RealIP()
}
