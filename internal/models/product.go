package models

import "gorm.io/gorm"

// Product represents a product in the store. Stock is the number of units
// still available for reservation; Version is bumped on every committed
// stock write and drives the optimistic compare-and-swap in the repository.
type Product struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name            string  `json:"name" validate:"required,min=3,max=100"`
	Description     string  `json:"description" validate:"omitempty,max=500"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	SpecialPrice    float64 `json:"special_price"`
	Stock           int     `json:"stock" validate:"gte=0"`
	Version         int64   `json:"-" gorm:"not null;default:0"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ApplyDiscount recomputes the special (selling) price from the list price
// and the current discount. Cart items snapshot SpecialPrice at add time.
func (p *Product) ApplyDiscount() {
	p.SpecialPrice = p.Price - p.Price*p.DiscountPercent/100
}
