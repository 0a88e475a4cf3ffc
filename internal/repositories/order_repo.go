package repositories

import (
	"grabbler/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order, its item snapshots, its payment record,
	// and the emptying of the source cart as one transaction: either the
	// order exists and the cart is empty, or neither happened. A blank
	// cartID skips the cart step (orders created outside checkout).
	Create(order *models.Order, cartID string) error
	GetByID(id string) (*models.Order, error)
	GetAll() ([]models.Order, error)
	GetAllByUserID(userID string) ([]models.Order, error)
	GetByPaymentID(paymentID string) (*models.Order, error)
	// UpdateStatus overwrites the status unconditionally (the trusted
	// administrative path).
	UpdateStatus(id string, status models.OrderStatus) error
	// UpdateStatusIf writes the status only when the current status still
	// equals expected. It returns ErrVersionConflict when another writer
	// transitioned the order first, so state-machine transitions cannot
	// be applied twice.
	UpdateStatusIf(id string, expected, status models.OrderStatus) error
}
