package services

import (
	"errors"
	"fmt"

	"grabbler/internal/models"
	"grabbler/internal/repositories"
)

// PaymentProcessor is the opaque payment collaborator invoked at
// checkout. It returns a payment record for the request; gateway
// integration lives behind it and out of this codebase.
type PaymentProcessor interface {
	Process(req models.PaymentRequest) (*models.Payment, error)
}

// PaymentService records payment attempts and handles refunds.
//
// Process does not call a real gateway; it mints a PENDING record from
// the request's opaque token. The record is persisted together with its
// order by OrderRepository.Create. Card numbers and CVVs must never
// appear in a PaymentRequest — only gateway tokens.
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	orderRepo   repositories.OrderRepository
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repositories.PaymentRepository, orderRepo repositories.OrderRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
	}
}

// Process creates a payment record for a checkout request.
func (s *PaymentService) Process(req models.PaymentRequest) (*models.Payment, error) {
	if req.Token == "" {
		return nil, fmt.Errorf("payment token is required")
	}
	return &models.Payment{
		Method: req.Method,
		Token:  req.Token,
		Status: models.PaymentStatusPending,
	}, nil
}

// Refund marks a completed payment as refunded and mirrors the status on
// the owning order.
func (s *PaymentService) Refund(paymentID string) error {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	if payment.Status != models.PaymentStatusCompleted {
		return fmt.Errorf("%w: only completed payments can be refunded, payment %s is %s", ErrInvalidTransition, paymentID, payment.Status)
	}

	payment.Status = models.PaymentStatusRefunded
	if err := s.paymentRepo.Save(payment); err != nil {
		return fmt.Errorf("failed to save refunded payment %s: %w", paymentID, err)
	}

	order, err := s.orderRepo.GetByPaymentID(paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// A payment without an order is possible only if checkout died
			// between payment and order persistence; nothing to mirror.
			return nil
		}
		return err
	}
	if err := s.orderRepo.UpdateStatus(order.ID, models.OrderStatusRefunded); err != nil {
		return fmt.Errorf("failed to mirror refund on order %s: %w", order.ID, err)
	}
	return nil
}

// CompletePayment marks a pending payment as completed, the hook a real
// gateway callback would use.
func (s *PaymentService) CompletePayment(paymentID string) error {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	if payment.Status != models.PaymentStatusPending {
		return fmt.Errorf("%w: payment %s is %s, expected PENDING", ErrInvalidTransition, paymentID, payment.Status)
	}
	payment.Status = models.PaymentStatusCompleted
	if err := s.paymentRepo.Save(payment); err != nil {
		return fmt.Errorf("failed to save completed payment %s: %w", paymentID, err)
	}
	return nil
}
