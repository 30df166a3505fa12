package ratelimit

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// UserBasedMiddleware limits requests per authenticated user, falling back
// to the client IP when no user is on the context.
func UserBasedMiddleware(limiter *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if userID, ok := c.Locals("user_id").(uint); ok {
			key = fmt.Sprintf("user:%d", userID)
		}

		if !limiter.Allow(key) {
			resetTime := limiter.ResetTime(key)
			retryAfter := max(int(time.Until(resetTime).Seconds()), 1)

			c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("X-RateLimit-Reset", resetTime.Format(time.RFC3339))
			c.Set("Retry-After", strconv.Itoa(retryAfter))

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded. Try again later.",
				"retry_after": fmt.Sprintf("%ds", retryAfter),
				"reset_time":  resetTime.Format(time.RFC3339),
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		return c.Next()
	}
}
