package handlers

import (
	"log"

	"grabbler/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for payment records.
type PaymentHandler struct {
	service *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service: service,
	}
}

// RegisterRoutes registers the payment routes. Both routes are
// administrative and must be guarded by the admin middleware.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/:id/complete", adminOnly, h.HandleCompletePayment)
	paymentRoutes.Post("/:id/refund", adminOnly, h.HandleRefundPayment)
}

// HandleCompletePayment marks a pending payment as completed, standing in
// for a gateway confirmation callback.
func (h *PaymentHandler) HandleCompletePayment(c *fiber.Ctx) error {
	paymentID := c.Params("id")
	if err := h.service.CompletePayment(paymentID); err != nil {
		log.Printf("Error completing payment %s: %v", paymentID, err)
		return serviceError(c, "Could not complete payment", err)
	}
	return c.JSON(fiber.Map{
		"message": "Payment completed successfully",
	})
}

// HandleRefundPayment refunds a completed payment and mirrors the status
// on its order.
func (h *PaymentHandler) HandleRefundPayment(c *fiber.Ctx) error {
	paymentID := c.Params("id")
	if err := h.service.Refund(paymentID); err != nil {
		log.Printf("Error refunding payment %s: %v", paymentID, err)
		return serviceError(c, "Could not refund payment", err)
	}
	return c.JSON(fiber.Map{
		"message": "Payment refunded successfully",
	})
}
