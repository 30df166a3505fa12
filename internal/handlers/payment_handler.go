package handlers

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type SubmitPaymentRequest struct {
	UPIID  string `json:"upi_id" validate:"required"`
	UPIPIN string `json:"upi_pin" validate:"required"`
}

// StartPayment returns the offer's payment, creating it on first visit.
func (h *PaymentHandler) StartPayment(c *fiber.Ctx) error {
	offerID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	payment, err := h.payments.EnsurePayment(c.UserContext(), currentActor(c), offerID)
	if err != nil {
		return respondError(c, err)
	}

	if payment.IsCompleted() {
		return c.JSON(fiber.Map{
			"message": "Payment for this offer has already been completed.",
			"payment": payment,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Enter your UPI ID and PIN to complete the payment.",
		"payment": payment,
	})
}

func (h *PaymentHandler) SubmitPayment(c *fiber.Ctx) error {
	offerID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	req := new(SubmitPaymentRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	result, err := h.payments.SubmitCredentials(c.UserContext(), currentActor(c), offerID, req.UPIID, req.UPIPIN)
	if err != nil {
		return respondError(c, err)
	}

	message := "Payment completed successfully! The item is now booked."
	if result.AlreadyCompleted {
		message = "Payment for this offer has already been completed."
	}

	return c.JSON(fiber.Map{
		"message":           message,
		"already_completed": result.AlreadyCompleted,
		"payment":           result.Payment,
	})
}

func (h *PaymentHandler) GetPaymentStatus(c *fiber.Ctx) error {
	offerID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	payment, err := h.payments.GetStatus(c.UserContext(), currentActor(c), offerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}
