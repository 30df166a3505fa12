package handlers

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/models"
	"Bazaarly/internal/services"
)

type DisputeHandler struct {
	disputes *services.DisputeService
}

func NewDisputeHandler(disputes *services.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

type RaiseDisputeRequest struct {
	TransactionID uint   `json:"transaction_id" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}

type UpdateDisputesRequest struct {
	IDs    []uint `json:"ids" validate:"required,min=1"`
	Status string `json:"status" validate:"required,oneof=resolved closed"`
}

// RaiseDispute lets the buyer or seller of a paid transaction report it.
func (h *DisputeHandler) RaiseDispute(c *fiber.Ctx) error {
	req := new(RaiseDisputeRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	dispute, err := h.disputes.FileDispute(c.UserContext(), currentActor(c), req.TransactionID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Dispute submitted successfully. An admin will review it shortly.",
		"dispute_id": dispute.ID,
		"dispute":    dispute,
	})
}

func (h *DisputeHandler) GetMyDisputes(c *fiber.Ctx) error {
	disputes, err := h.disputes.ListMine(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"disputes": disputes,
		"count":    len(disputes),
	})
}

func (h *DisputeHandler) GetDispute(c *fiber.Ctx) error {
	disputeID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	dispute, err := h.disputes.Get(c.UserContext(), currentActor(c), disputeID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"dispute": dispute})
}

// GetAllDisputes is the admin list, optionally filtered by ?status=.
func (h *DisputeHandler) GetAllDisputes(c *fiber.Ctx) error {
	status := models.DisputeStatus(c.Query("status"))
	switch status {
	case "", models.DisputeOpen, models.DisputeResolved, models.DisputeClosed:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
	}

	disputes, err := h.disputes.ListAll(c.UserContext(), status)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"disputes": disputes,
		"count":    len(disputes),
	})
}

// UpdateDisputes resolves or closes several open disputes at once.
func (h *DisputeHandler) UpdateDisputes(c *fiber.Ctx) error {
	req := new(UpdateDisputesRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	updated, err := h.disputes.SetStatus(c.UserContext(), req.IDs, models.DisputeStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Disputes updated",
		"updated": updated,
	})
}

func (h *DisputeHandler) ResolveDispute(c *fiber.Ctx) error {
	return h.setOne(c, models.DisputeResolved)
}

func (h *DisputeHandler) CloseDispute(c *fiber.Ctx) error {
	return h.setOne(c, models.DisputeClosed)
}

func (h *DisputeHandler) setOne(c *fiber.Ctx, status models.DisputeStatus) error {
	disputeID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.disputes.SetStatus(c.UserContext(), []uint{disputeID}, status)
	if err != nil {
		return respondError(c, err)
	}
	if updated == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Dispute is not open or does not exist",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Dispute " + string(status),
		"updated": updated,
	})
}
