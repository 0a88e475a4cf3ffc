package models

import "gorm.io/gorm"

// PaymentMethod enumerates the supported payment instruments.
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodPaypal       PaymentMethod = "PAYPAL"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// PaymentStatus enumerates the lifecycle of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the record created by the payment collaborator at checkout.
// Token is an opaque gateway token; card numbers never reach this system.
type Payment struct {
	ID         string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Method     PaymentMethod `json:"payment_method" gorm:"type:varchar(20)"`
	Token      string        `json:"-" gorm:"type:varchar(255)"`
	Status     PaymentStatus `json:"payment_status" gorm:"type:varchar(20)"`
	gorm.Model               // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// PaymentRequest is the payload the checkout endpoint forwards to the
// payment collaborator.
type PaymentRequest struct {
	Method PaymentMethod `json:"payment_method" validate:"required,oneof=CREDIT_CARD PAYPAL BANK_TRANSFER"`
	Token  string        `json:"payment_token" validate:"required"`
}
