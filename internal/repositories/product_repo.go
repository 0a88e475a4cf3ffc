package repositories

import (
	"grabbler/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	// Update rewrites catalog fields only; stock and version are owned by
	// UpdateStock and never touched here.
	Update(product *models.Product) error
	Delete(id string) error
	// UpdateStock writes a new stock level conditioned on the version the
	// caller read. It returns ErrVersionConflict when another writer
	// committed first; the caller must re-read and rerun the whole
	// read-validate-write cycle, not just this write.
	UpdateStock(id string, newStock int, expectedVersion int64) error
}
