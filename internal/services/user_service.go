package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Bazaarly/internal/models"
)

const minPasswordLength = 8

// ErrBadLogin covers both an unknown email and a wrong password.
var ErrBadLogin = errors.New("invalid email or password")

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a regular account. Emails are stored lowercased.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		return nil, newValidationError("username", "Username is required")
	}
	if len(password) < minPasswordLength {
		return nil, newValidationError("password", "Password must be at least %d characters long", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("create user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, conflict("exists", "A user with this email or username already exists")
	}

	zap.L().Info("User registered", zap.Uint("user_id", user.ID))
	return &user, nil
}

// Authenticate checks an email/password pair and refuses suspended accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadLogin
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrBadLogin
	}
	if user.IsSuspended {
		return nil, forbidden("Your account has been suspended.")
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}
