package repositories

import (
	"grabbler/internal/models"
)

// PaymentRepository defines the interface for payment record access.
// Payment rows are created alongside their order (OrderRepository.Create);
// this interface serves the refund path, which mutates status afterwards.
type PaymentRepository interface {
	GetByID(id string) (*models.Payment, error)
	Save(payment *models.Payment) error
}
