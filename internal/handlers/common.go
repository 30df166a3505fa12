package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"Bazaarly/internal/models"
	"Bazaarly/internal/services"
)

var validate = validator.New()

// currentActor reads the identity Protected or OptionalAuth put on the
// request. Anonymous requests get a zero Actor.
func currentActor(c *fiber.Ctx) services.Actor {
	userID, _ := c.Locals("user_id").(uint)
	role, _ := c.Locals("role").(string)
	return services.Actor{ID: userID, IsStaff: role == models.RoleAdmin}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into req and runs its validate tags.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// respondError maps engine errors onto status codes with the
// {"error": "..."} body.
func respondError(c *fiber.Ctx, err error) error {
	var (
		fiberErr      *fiber.Error
		validationErr *services.ValidationError
		permissionErr *services.PermissionError
		conflictErr   *services.StateConflictError
		notFoundErr   *services.NotFoundError
	)

	switch {
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.As(err, &permissionErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": permissionErr.Message})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  conflictErr.Message,
			"status": conflictErr.Current,
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": capitalize(notFoundErr.Error())})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Invalid UPI ID or PIN."})
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many payment attempts. Please try again later."})
	default:
		zap.L().Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
