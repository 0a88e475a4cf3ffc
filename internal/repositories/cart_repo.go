package repositories

import (
	"grabbler/internal/models"
)

// CartRepository defines the interface for cart data access. Item writes
// take the owning cart so the line item and the cart's cached total commit
// as one unit; the cart is single-owner, so this is the only atomicity it
// needs.
type CartRepository interface {
	Create(cart *models.Cart) error
	GetByID(id string) (*models.Cart, error)
	GetByUserID(userID string) (*models.Cart, error)
	// AddItem persists a new line item together with the cart's new total.
	AddItem(cart *models.Cart, item *models.CartItem) error
	// UpdateItem persists changed quantity/price on an existing line item
	// together with the cart's new total.
	UpdateItem(cart *models.Cart, item *models.CartItem) error
	// RemoveItem deletes a line item together with the cart's new total.
	// The delete is issued explicitly; nothing cascades.
	RemoveItem(cart *models.Cart, item *models.CartItem) error
	// Clear deletes every line item and zeroes the cached total.
	Clear(cartID string) error
}
