package models

import "gorm.io/gorm"

// Cart is a user's mutable collection of line items plus a cached running
// total. It is created when the user registers, emptied (never destroyed)
// after a successful checkout, and owned by exactly one user.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID"`
	TotalPrice float64    `json:"total_price"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// CartItem is one line of a cart. UnitPrice and DiscountPercent are
// snapshots of the product's special price and discount at add time.
// At most one item exists per (cart, product) pair.
type CartItem struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID          string  `json:"cart_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	ProductID       string  `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	Quantity        int     `json:"quantity" validate:"gt=0"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// LineTotal is this item's contribution to the cart's cached total.
func (ci *CartItem) LineTotal() float64 {
	return ci.UnitPrice * float64(ci.Quantity)
}

// ItemForProduct returns the cart item referencing productID, or nil.
func (c *Cart) ItemForProduct(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
