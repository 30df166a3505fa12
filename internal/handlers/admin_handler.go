package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

// AdminHandler serves the staff-only user management and dashboard endpoints.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) GetAllUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	if err := h.db.WithContext(c.UserContext()).Model(&models.User{}).Count(&total).Error; err != nil {
		return respondError(c, err)
	}

	if err := h.db.WithContext(c.UserContext()).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *AdminHandler) SuspendUser(c *fiber.Ctx) error {
	return h.setSuspended(c, true)
}

func (h *AdminHandler) UnsuspendUser(c *fiber.Ctx) error {
	return h.setSuspended(c, false)
}

func (h *AdminHandler) setSuspended(c *fiber.Ctx, suspended bool) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if suspended && userID == currentActor(c).ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You cannot suspend your own account",
		})
	}

	result := h.db.WithContext(c.UserContext()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_suspended", suspended)
	if result.Error != nil {
		return respondError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	zap.L().Info("User suspension changed",
		zap.Uint("user_id", userID),
		zap.Bool("suspended", suspended),
		zap.Uint("admin_id", currentActor(c).ID))

	message := "User unsuspended successfully"
	if suspended {
		message = "User suspended successfully"
	}
	return c.JSON(fiber.Map{"message": message})
}

type dashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	SuspendedUsers    int64 `json:"suspended_users"`
	PendingListings   int64 `json:"pending_listings"`
	ApprovedListings  int64 `json:"approved_listings"`
	RejectedListings  int64 `json:"rejected_listings"`
	PendingModeration int64 `json:"pending_moderation"`
	PendingOffers     int64 `json:"pending_offers"`
	AcceptedOffers    int64 `json:"accepted_offers"`
	CompletedPayments int64 `json:"completed_payments"`
	OpenDisputes      int64 `json:"open_disputes"`
	ResolvedDisputes  int64 `json:"resolved_disputes"`
}

func (h *AdminHandler) GetDashboardStats(c *fiber.Ctx) error {
	db := h.db.WithContext(c.UserContext())

	var stats dashboardStats
	counts := []struct {
		model any
		where string
		arg   any
		dest  *int64
	}{
		{&models.User{}, "", nil, &stats.TotalUsers},
		{&models.User{}, "is_suspended = ?", true, &stats.SuspendedUsers},
		{&models.Listing{}, "status = ?", models.ListingPending, &stats.PendingListings},
		{&models.Listing{}, "status = ?", models.ListingApproved, &stats.ApprovedListings},
		{&models.Listing{}, "status = ?", models.ListingRejected, &stats.RejectedListings},
		{&models.ModerationEntry{}, "status = ?", models.ModerationPending, &stats.PendingModeration},
		{&models.Offer{}, "status = ?", models.OfferPending, &stats.PendingOffers},
		{&models.Offer{}, "status = ?", models.OfferAccepted, &stats.AcceptedOffers},
		{&models.Payment{}, "status = ?", models.PaymentCompleted, &stats.CompletedPayments},
		{&models.Dispute{}, "status = ?", models.DisputeOpen, &stats.OpenDisputes},
		{&models.Dispute{}, "status = ?", models.DisputeResolved, &stats.ResolvedDisputes},
	}

	for _, q := range counts {
		tx := db.Model(q.model)
		if q.where != "" {
			tx = tx.Where(q.where, q.arg)
		}
		if err := tx.Count(q.dest).Error; err != nil {
			return respondError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}
