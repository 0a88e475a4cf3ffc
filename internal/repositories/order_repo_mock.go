package repositories

import (
	"fmt"
	"sync"
	"time"

	"grabbler/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Carts, when set, stands in for the cart table that the real Create
// clears inside the same transaction.
type MockOrderRepository struct {
	orders map[string]models.Order
	Carts  CartRepository
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create stores the order with its items and payment, and clears the
// source cart, as one unit: a failed cart clear takes the stored order
// back out, mirroring the transaction rollback of the real repository.
func (r *MockOrderRepository) Create(order *models.Order, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Payment != nil {
		if order.Payment.ID == "" {
			order.Payment.ID = uuid.New().String()
		}
		order.PaymentID = order.Payment.ID
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = cloneOrder(order)

	if cartID != "" && r.Carts != nil {
		if err := r.Carts.Clear(cartID); err != nil {
			delete(r.orders, order.ID)
			return fmt.Errorf("failed to create order: %w", err)
		}
	}
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	copied := cloneOrder(&order)
	return &copied, nil
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, cloneOrder(&order))
	}
	return orderList, nil
}

// GetAllByUserID returns every order placed by a user.
func (r *MockOrderRepository) GetAllByUserID(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, cloneOrder(&order))
		}
	}
	return orderList, nil
}

// GetByPaymentID returns the order attached to a payment record.
func (r *MockOrderRepository) GetByPaymentID(paymentID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.PaymentID == paymentID {
			copied := cloneOrder(&order)
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("order for payment %s: %w", paymentID, ErrNotFound)
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdateStatusIf performs the conditional status write; the check and the
// write are atomic under the mutex.
func (r *MockOrderRepository) UpdateStatusIf(id string, expected, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.Status != expected {
		return fmt.Errorf("status update for order %s: %w", id, ErrVersionConflict)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

func cloneOrder(order *models.Order) models.Order {
	copied := *order
	copied.Items = make([]models.OrderItem, len(order.Items))
	copy(copied.Items, order.Items)
	if order.Payment != nil {
		payment := *order.Payment
		copied.Payment = &payment
	}
	return copied
}
