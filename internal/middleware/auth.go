package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"Bazaarly/internal/models"
	"Bazaarly/internal/services"
)

// UserLookup loads the account behind a token so suspension and role
// changes apply to tokens issued before them.
type UserLookup interface {
	Get(ctx context.Context, userID uint) (*models.User, error)
}

type authClaims struct {
	userID uint
	role   string
}

func parseBearer(authHeader, secret string) (authClaims, string) {
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return authClaims{}, "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authClaims{}, "Invalid token claims"
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return authClaims{}, "Invalid token claims"
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	return authClaims{userID: uint(userID), role: role}, ""
}

// refresh replaces the token's role with the stored one. A nil lookup
// trusts the token as issued.
func refresh(ctx context.Context, users UserLookup, claims authClaims) (authClaims, int, string) {
	if users == nil {
		return claims, 0, ""
	}
	user, err := users.Get(ctx, claims.userID)
	if err != nil {
		var nf *services.NotFoundError
		if errors.As(err, &nf) {
			return authClaims{}, fiber.StatusUnauthorized, "Account not found"
		}
		zap.L().Error("Failed to load token user", zap.Uint("user_id", claims.userID), zap.Error(err))
		return authClaims{}, fiber.StatusInternalServerError, "Internal server error"
	}
	if user.IsSuspended {
		return authClaims{}, fiber.StatusForbidden, "Your account has been suspended."
	}
	claims.role = user.Role
	if claims.role == "" {
		claims.role = models.RoleUser
	}
	return claims, 0, ""
}

// Protected validates the bearer token, re-checks the account when users is
// set and puts user_id and role on the request locals.
func Protected(secret string, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		claims, problem := parseBearer(authHeader, secret)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": problem,
			})
		}

		claims, status, problem := refresh(c.UserContext(), users, claims)
		if problem != "" {
			return c.Status(status).JSON(fiber.Map{
				"error": problem,
			})
		}

		c.Locals("user_id", claims.userID)
		c.Locals("role", claims.role)

		return c.Next()
	}
}

// OptionalAuth sets the same locals as Protected when a valid token for an
// active account is sent and lets anonymous requests through.
func OptionalAuth(secret string, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get("Authorization"); authHeader != "" {
			if claims, problem := parseBearer(authHeader, secret); problem == "" {
				if claims, _, problem = refresh(c.UserContext(), users, claims); problem == "" {
					c.Locals("user_id", claims.userID)
					c.Locals("role", claims.role)
				}
			}
		}
		return c.Next()
	}
}

// AdminOnly must run after Protected. The role it checks is the stored one
// when Protected was given a lookup.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// IssueToken signs an HS256 token carrying the claims Protected reads.
func IssueToken(secret string, userID uint, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
