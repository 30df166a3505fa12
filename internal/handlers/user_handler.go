package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
	"Bazaarly/internal/models"
	"Bazaarly/internal/services"
)

const tokenTTL = 7 * 24 * time.Hour

type UserHandler struct {
	users   *services.UserService
	ratings *services.RatingService
	secret  string
}

func NewUserHandler(users *services.UserService, ratings *services.RatingService, secret string) *UserHandler {
	return &UserHandler{users: users, ratings: ratings, secret: secret}
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Signup(c *fiber.Ctx) error {
	req := new(SignupRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	user, err := h.users.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := middleware.IssueToken(h.secret, user.ID, user.Role, tokenTTL)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"token":   token,
		"user":    userView(user),
	})
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	user, err := h.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, services.ErrBadLogin) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	token, err := middleware.IssueToken(h.secret, user.ID, user.Role, tokenTTL)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    userView(user),
	})
}

// GetProfile returns the caller's account together with the ratings they received.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.ratings.Received(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":           userView(user),
		"average_rating": summary.Average,
		"rating_count":   summary.Count,
	})
}

func userView(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}
