package repositories

import (
	"fmt"
	"grabbler/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// Create creates a new, empty cart for a user.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// GetByID retrieves a cart with its items by cart ID.
func (r *GORMCartRepository) GetByID(id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items").First(&cart, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cart with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart by ID %s: %w", id, err)
	}
	return &cart, nil
}

// GetByUserID retrieves a cart with its items by the owning user's ID.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items").First(&cart, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// AddItem persists a new line item and the cart's new total in one
// transaction.
func (r *GORMCartRepository) AddItem(cart *models.Cart, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("total_price", cart.TotalPrice).Error
	})
	if err != nil {
		return fmt.Errorf("failed to add item to cart %s: %w", cart.ID, err)
	}
	return nil
}

// UpdateItem persists a changed line item and the cart's new total in one
// transaction.
func (r *GORMCartRepository) UpdateItem(cart *models.Cart, item *models.CartItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"quantity":         item.Quantity,
				"unit_price":       item.UnitPrice,
				"discount_percent": item.DiscountPercent,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("cart item with ID %s: %w", item.ID, ErrNotFound)
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("total_price", cart.TotalPrice).Error
	})
	if err != nil {
		return fmt.Errorf("failed to update item in cart %s: %w", cart.ID, err)
	}
	return nil
}

// RemoveItem deletes a line item and persists the cart's new total in one
// transaction.
func (r *GORMCartRepository) RemoveItem(cart *models.Cart, item *models.CartItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Delete(&models.CartItem{}, "id = ?", item.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("cart item with ID %s: %w", item.ID, ErrNotFound)
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("total_price", cart.TotalPrice).Error
	})
	if err != nil {
		return fmt.Errorf("failed to remove item from cart %s: %w", cart.ID, err)
	}
	return nil
}

// Clear deletes all line items and zeroes the total in one transaction.
// Inventory handling is the caller's concern: checkout transfers the
// reservation to the order, abandonment releases it first.
func (r *GORMCartRepository) Clear(cartID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cartID).
			Update("total_price", 0).Error
	})
	if err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}
