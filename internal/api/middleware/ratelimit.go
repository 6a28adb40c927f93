package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Limiter is the per-identity request throttle (Redis fixed window).
type Limiter interface {
	Allow(ctx context.Context, identity string) (bool, error)
}

// RateLimit throttles requests per client IP. Limiter errors fail open: a
// Redis outage must not take the API down with it.
func RateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("rate limit check failed, allowing request")
				return next(c)
			}
			if !ok {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "Too many requests"})
			}
			return next(c)
		}
	}
}
