package repositories

import (
	"fmt"
	"sync"

	"grabbler/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart // keyed by cart ID, items inlined
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// Create adds a new cart.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	for _, c := range r.carts {
		if c.UserID == cart.UserID {
			return fmt.Errorf("cart for user %s already exists", cart.UserID)
		}
	}
	r.carts[cart.ID] = cloneCart(cart)
	return nil
}

// GetByID returns a cart by its ID.
func (r *MockCartRepository) GetByID(id string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart with ID %s: %w", id, ErrNotFound)
	}
	copied := cloneCart(&cart)
	return &copied, nil
}

// GetByUserID returns the cart owned by userID.
func (r *MockCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cart := range r.carts {
		if cart.UserID == userID {
			copied := cloneCart(&cart)
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
}

// AddItem stores a new line item and the cart's new total atomically.
func (r *MockCartRepository) AddItem(cart *models.Cart, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.ID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", cart.ID, ErrNotFound)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	for _, existing := range stored.Items {
		if existing.ProductID == item.ProductID {
			return fmt.Errorf("cart %s already has an item for product %s", cart.ID, item.ProductID)
		}
	}
	stored.Items = append(stored.Items, *item)
	stored.TotalPrice = cart.TotalPrice
	r.carts[cart.ID] = stored
	return nil
}

// UpdateItem stores a changed line item and the cart's new total atomically.
func (r *MockCartRepository) UpdateItem(cart *models.Cart, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.ID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", cart.ID, ErrNotFound)
	}
	for i := range stored.Items {
		if stored.Items[i].ID == item.ID {
			stored.Items[i] = *item
			stored.TotalPrice = cart.TotalPrice
			r.carts[cart.ID] = stored
			return nil
		}
	}
	return fmt.Errorf("cart item with ID %s: %w", item.ID, ErrNotFound)
}

// RemoveItem deletes a line item and stores the cart's new total atomically.
func (r *MockCartRepository) RemoveItem(cart *models.Cart, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.ID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", cart.ID, ErrNotFound)
	}
	for i := range stored.Items {
		if stored.Items[i].ID == item.ID {
			stored.Items = append(stored.Items[:i], stored.Items[i+1:]...)
			stored.TotalPrice = cart.TotalPrice
			r.carts[cart.ID] = stored
			return nil
		}
	}
	return fmt.Errorf("cart item with ID %s: %w", item.ID, ErrNotFound)
}

// Clear removes every line item and zeroes the total.
func (r *MockCartRepository) Clear(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cartID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", cartID, ErrNotFound)
	}
	stored.Items = nil
	stored.TotalPrice = 0
	r.carts[cartID] = stored
	return nil
}

func cloneCart(cart *models.Cart) models.Cart {
	copied := *cart
	copied.Items = make([]models.CartItem, len(cart.Items))
	copy(copied.Items, cart.Items)
	return copied
}
