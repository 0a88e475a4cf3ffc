package services

import (
	"errors"

	"grabbler/internal/models"
	"grabbler/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a new product, deriving its special price from
// the list price and discount.
func (s *ProductService) CreateProduct(product *models.Product) error {
	product.ApplyDiscount()
	return s.repo.Create(product)
}

// UpdateProduct updates a product's catalog fields and recomputes the
// special price. Stock is not touched here; inventory operations own it.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	product.ApplyDiscount()
	err := s.repo.Update(product)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	err := s.repo.Delete(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
