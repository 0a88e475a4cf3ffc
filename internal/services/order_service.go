package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"grabbler/internal/models"
	"grabbler/internal/repositories"
	"grabbler/pkg/retry"
)

// EventPublisher publishes order lifecycle events to the message broker.
// *rabbitmq.Client satisfies it; a nil publisher disables events.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderService converts carts into immutable orders and drives the order
// status state machine. Checkout performs no stock re-validation: the
// units were reserved when they entered the cart, and placing the order
// transfers that reservation from the cart to the order. Cancellation is
// the path that hands units back to the pool.
type OrderService struct {
	orderRepo repositories.OrderRepository
	cartRepo  repositories.CartRepository
	inventory *InventoryService
	payments  PaymentProcessor
	events    EventPublisher
	retryCfg  retry.Config
}

// NewOrderService creates a new OrderService. events may be nil, in which
// case no events are published.
func NewOrderService(orderRepo repositories.OrderRepository, cartRepo repositories.CartRepository, inventory *InventoryService, payments PaymentProcessor, events EventPublisher, retryCfg retry.Config) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		inventory: inventory,
		payments:  payments,
		events:    events,
		retryCfg:  retryCfg,
	}
}

// PlaceOrder converts the user's cart into a PENDING order. The payment
// collaborator is invoked first: when it fails, no order is created and
// neither inventory nor the cart is touched. The order row, its item
// snapshots, the payment record, and the cart clear are persisted as one
// transaction, and the clear releases no inventory: the stock reserved by
// the cart now belongs to the order. A failed transaction leaves the cart
// (and its reservation) intact, so the checkout can simply be retried.
func (s *OrderService) PlaceOrder(userID string, paymentRequest models.PaymentRequest) (*models.Order, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	payment, err := s.payments.Process(paymentRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	order := &models.Order{
		UserID:      userID,
		OrderDate:   time.Now(),
		TotalAmount: cart.TotalPrice,
		Status:      models.OrderStatusPending,
		Payment:     payment,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
		})
	}

	if err := s.orderRepo.Create(order, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalAmount,
	})

	return order, nil
}

// CancelOrder cancels a PENDING or PROCESSING order, returning every
// item's quantity to inventory under the optimistic-retry discipline.
// Only the order's owner (or an administrator) may cancel.
func (s *OrderService) CancelOrder(orderID, requesterID string, admin bool) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if !admin && order.UserID != requesterID {
		return fmt.Errorf("%w: order %s belongs to another user", ErrForbidden, orderID)
	}
	if !order.Status.Cancellable() {
		return fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidTransition, order.Status)
	}

	// Claim the cancellation with a conditional write before touching
	// inventory: two concurrent cancels both pass the check above, but
	// only one wins the status write, so the units release exactly once.
	if err := s.orderRepo.UpdateStatusIf(orderID, order.Status, models.OrderStatusCancelled); err != nil {
		if isVersionConflict(err) {
			return fmt.Errorf("%w: order %s changed while cancelling", ErrInvalidTransition, orderID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	// Release item by item; each release races against concurrent stock
	// mutations, so each runs in its own retry envelope. If one item
	// exhausts its budget, the releases that already committed are taken
	// back and the claim is undone so the failed cancel leaves both stock
	// and the order where they were.
	for i, item := range order.Items {
		err := withOptimisticRetry(s.retryCfg, func() error {
			_, err := s.inventory.Release(item.ProductID, item.Quantity)
			return err
		})
		if err != nil {
			s.reReserveReleased(order.Items[:i])
			if restoreErr := s.orderRepo.UpdateStatus(orderID, order.Status); restoreErr != nil {
				log.Printf("Failed to restore order %s to %s after failed cancel: %v", orderID, order.Status, restoreErr)
			}
			return err
		}
	}

	s.publishEvent("order.cancelled", map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
	})

	return nil
}

// UpdateOrderStatus overwrites an order's status. This is the trusted
// administrative path; transition legality is not enforced here.
func (s *OrderService) UpdateOrderStatus(orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	s.publishEvent("order.status_updated", map[string]interface{}{
		"orderID": order.ID,
		"status":  order.Status,
	})

	return order, nil
}

// GetOrder returns a single order, restricted to its owner unless the
// requester is an administrator.
func (s *OrderService) GetOrder(orderID, requesterID string, admin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !admin && order.UserID != requesterID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", ErrForbidden, orderID)
	}
	return order, nil
}

// GetOrdersByUser returns every order the user has placed.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetAllByUserID(userID)
}

// GetAllOrders returns all orders (administrative listing).
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// reReserveReleased takes back releases that committed before a cancel
// failed partway. Best effort; failures are logged, not propagated.
func (s *OrderService) reReserveReleased(items []models.OrderItem) {
	for _, item := range items {
		err := withOptimisticRetry(s.retryCfg, func() error {
			_, err := s.inventory.Reserve(item.ProductID, item.Quantity)
			return err
		})
		if err != nil {
			log.Printf("Failed to re-reserve %d units of product %s during cancel rollback: %v", item.Quantity, item.ProductID, err)
		}
	}
}

func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.events.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
