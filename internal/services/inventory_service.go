package services

import (
	"errors"
	"fmt"

	"grabbler/internal/models"
	"grabbler/internal/repositories"
)

// InventoryService applies single-attempt reserve and release writes
// against a product's available stock, using the product's version for
// compare-and-swap. A bare call is not safe to blindly repeat: callers
// wrap it in the optimistic-retry executor and re-run their whole
// read-validate-write cycle when repositories.ErrVersionConflict comes
// back.
type InventoryService struct {
	productRepo repositories.ProductRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(productRepo repositories.ProductRepository) *InventoryService {
	return &InventoryService{
		productRepo: productRepo,
	}
}

// Reserve takes quantity units out of the product's available stock. It
// returns the record as read (stock and version prior to the write) so
// callers can snapshot price and discount from the same read. Fails with
// ErrOutOfStock when nothing is left and ErrInsufficientStock when less
// than quantity is left.
func (s *InventoryService) Reserve(productID string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if product.Stock == 0 {
		return nil, fmt.Errorf("%w: product %s", ErrOutOfStock, productID)
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("%w: product %s has only %d items in stock", ErrInsufficientStock, productID, product.Stock)
	}

	if err := s.productRepo.UpdateStock(productID, product.Stock-quantity, product.Version); err != nil {
		return nil, err
	}
	return product, nil
}

// Release returns quantity units to the product's available stock, used
// when an item is removed from a cart or an order is cancelled. Same
// compare-and-swap discipline as Reserve.
func (s *InventoryService) Release(productID string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("release quantity must be positive, got %d", quantity)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := s.productRepo.UpdateStock(productID, product.Stock+quantity, product.Version); err != nil {
		return nil, err
	}
	return product, nil
}
