package services

import (
	"errors"
	"fmt"
	"log"

	"grabbler/internal/models"
	"grabbler/internal/repositories"
	"grabbler/pkg/retry"
)

// CartService validates and applies add/update/remove operations against
// a user's cart and the referenced inventory records. Every operation
// that touches inventory runs inside the optimistic-retry envelope: on a
// version conflict the whole read-validate-write cycle is re-run against
// fresh state, up to the configured budget.
//
// Stock is reserved at cart-add time, not at checkout time, so two
// shoppers can never both check out the last unit. Prices are snapshotted
// at add time and re-fetched on quantity updates.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	inventory   *InventoryService
	retryCfg    retry.Config
}

// NewCartService creates a new CartService. retryCfg governs the
// optimistic-retry envelope around inventory-mutating operations.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, inventory *InventoryService, retryCfg retry.Config) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		inventory:   inventory,
		retryCfg:    retryCfg,
	}
}

// CreateCartForUser creates the user's (empty) cart. Called once, at
// registration time.
func (s *CartService) CreateCartForUser(userID string) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	return cart, nil
}

// GetCart returns the user's cart with its items.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	return s.loadCart(userID)
}

// AddItem reserves quantity units of the product and appends a new line
// item snapshotting the product's current special price and discount.
// A product already in the cart is rejected with ErrDuplicateItem; the
// caller should use UpdateItem instead.
func (s *CartService) AddItem(userID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	var cart *models.Cart
	err := withOptimisticRetry(s.retryCfg, func() error {
		var err error
		cart, err = s.loadCart(userID)
		if err != nil {
			return err
		}
		if cart.ItemForProduct(productID) != nil {
			return fmt.Errorf("%w: product %s", ErrDuplicateItem, productID)
		}

		product, err := s.inventory.Reserve(productID, quantity)
		if err != nil {
			return err
		}

		item := &models.CartItem{
			CartID:          cart.ID,
			ProductID:       productID,
			Quantity:        quantity,
			UnitPrice:       product.SpecialPrice,
			DiscountPercent: product.DiscountPercent,
		}
		cart.TotalPrice += item.LineTotal()

		if err := s.cartRepo.AddItem(cart, item); err != nil {
			// The reservation already committed; hand the units back so a
			// failed append does not strand stock.
			s.releaseQuietly(productID, quantity)
			return err
		}
		cart.Items = append(cart.Items, *item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem changes the quantity of an existing line item. A positive
// delta reserves the difference from inventory, a negative delta releases
// it. The line is re-priced at the product's current special price, so
// the cached total reflects price changes since add time.
func (s *CartService) UpdateItem(userID, productID string, newQuantity int) (*models.Cart, error) {
	if newQuantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", newQuantity)
	}

	var cart *models.Cart
	err := withOptimisticRetry(s.retryCfg, func() error {
		var err error
		cart, err = s.loadCart(userID)
		if err != nil {
			return err
		}
		item := cart.ItemForProduct(productID)
		if item == nil {
			return fmt.Errorf("%w: product %s", ErrItemNotFound, productID)
		}

		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		delta := newQuantity - item.Quantity
		switch {
		case delta > 0:
			if product, err = s.inventory.Reserve(productID, delta); err != nil {
				return err
			}
		case delta < 0:
			if product, err = s.inventory.Release(productID, -delta); err != nil {
				return err
			}
		}

		oldQuantity := item.Quantity
		cart.TotalPrice -= item.LineTotal()
		item.Quantity = newQuantity
		item.UnitPrice = product.SpecialPrice
		item.DiscountPercent = product.DiscountPercent
		cart.TotalPrice += item.LineTotal()

		if err := s.cartRepo.UpdateItem(cart, item); err != nil {
			// Undo the inventory delta so the failed write leaves stock
			// where it was.
			if delta > 0 {
				s.releaseQuietly(productID, delta)
			} else if delta < 0 {
				s.reserveQuietly(productID, -delta)
			}
			item.Quantity = oldQuantity
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem releases the line item's reserved quantity back to inventory
// and deletes the item, decrementing the cached total by its line total.
func (s *CartService) RemoveItem(userID, productID string) (*models.Cart, error) {
	var cart *models.Cart
	err := withOptimisticRetry(s.retryCfg, func() error {
		var err error
		cart, err = s.loadCart(userID)
		if err != nil {
			return err
		}
		item := cart.ItemForProduct(productID)
		if item == nil {
			return fmt.Errorf("%w: product %s", ErrItemNotFound, productID)
		}
		return s.removeItemFromCart(cart, item)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties an abandoned cart, returning every item's reservation
// to the pool. Each item is removed under its own retry envelope and is
// only considered done once both the inventory release and the item
// deletion committed, so a partial failure never double-releases stock.
//
// Checkout does NOT go through here: a placed order keeps its
// reservation, and OrderService clears the cart without releasing.
func (s *CartService) ClearCart(userID string) error {
	cart, err := s.loadCart(userID)
	if err != nil {
		return err
	}

	items := make([]models.CartItem, len(cart.Items))
	copy(items, cart.Items)

	for i := range items {
		item := &items[i]
		err := withOptimisticRetry(s.retryCfg, func() error {
			return s.removeItemFromCart(cart, item)
		})
		if err != nil {
			return fmt.Errorf("cart item for product %s could not be removed: %w", item.ProductID, err)
		}
		cart.Items = removeCartItem(cart.Items, item.ID)
	}
	return nil
}

// removeItemFromCart is one release-and-delete cycle: the inventory
// release commits first, then the item row and the new total. A failed
// delete re-reserves the released units so bookkeeping stays balanced.
func (s *CartService) removeItemFromCart(cart *models.Cart, item *models.CartItem) error {
	if _, err := s.inventory.Release(item.ProductID, item.Quantity); err != nil {
		return err
	}

	cart.TotalPrice -= item.LineTotal()
	if err := s.cartRepo.RemoveItem(cart, item); err != nil {
		cart.TotalPrice += item.LineTotal()
		s.reserveQuietly(item.ProductID, item.Quantity)
		return err
	}
	return nil
}

func (s *CartService) loadCart(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

// releaseQuietly is a best-effort compensation: it returns units to the
// pool under its own retry envelope and logs when even that fails.
func (s *CartService) releaseQuietly(productID string, quantity int) {
	err := withOptimisticRetry(s.retryCfg, func() error {
		_, err := s.inventory.Release(productID, quantity)
		return err
	})
	if err != nil {
		log.Printf("Failed to release %d units of product %s during rollback: %v", quantity, productID, err)
	}
}

// reserveQuietly is the inverse compensation for a failed release path.
func (s *CartService) reserveQuietly(productID string, quantity int) {
	err := withOptimisticRetry(s.retryCfg, func() error {
		_, err := s.inventory.Reserve(productID, quantity)
		return err
	})
	if err != nil {
		log.Printf("Failed to re-reserve %d units of product %s during rollback: %v", quantity, productID, err)
	}
}

func removeCartItem(items []models.CartItem, itemID string) []models.CartItem {
	for i := range items {
		if items[i].ID == itemID {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}
