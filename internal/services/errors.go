package services

import (
	"errors"

	"grabbler/internal/repositories"
	"grabbler/pkg/retry"
)

// Business-rule and concurrency outcomes surfaced to the HTTP layer.
// Business errors are expected results and are never retried; only
// version conflicts are retried, and only ErrConcurrencyExhausted is
// reported once the budget runs out.
var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotFound      = errors.New("product does not exist in the cart")
	ErrDuplicateItem     = errors.New("product already exists in the cart")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cannot place order with empty cart")
	ErrOrderNotFound     = errors.New("order not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrForbidden         = errors.New("operation not permitted for this user")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPaymentFailed     = errors.New("payment processing failed")

	// ErrConcurrencyExhausted means the optimistic retry budget ran out.
	// The user should refresh and try again.
	ErrConcurrencyExhausted = errors.New("too many concurrent stock updates, please refresh and try again")
)

func isVersionConflict(err error) bool {
	return errors.Is(err, repositories.ErrVersionConflict)
}

// withOptimisticRetry wraps a read-validate-write cycle in the retry
// executor and maps exhaustion to the service-level error.
func withOptimisticRetry(cfg retry.Config, op func() error) error {
	err := retry.Do(cfg, isVersionConflict, op)
	if errors.Is(err, retry.ErrExhausted) {
		return ErrConcurrencyExhausted
	}
	return err
}
