package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for payments that are not strictly positive.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// PaymentRecord is money received for a service kind. It is not tied to
// individual deliveries.
type PaymentRecord struct {
	ID         string          `json:"id"`
	Date       Date            `json:"date"`
	Item       ServiceKind     `json:"item"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     *string         `json:"reason,omitempty"`
	Attachment *string         `json:"attachment,omitempty"`
}

// Validate checks the invariants of a user-entered payment.
func (p PaymentRecord) Validate() error {
	if p.Date.IsZero() {
		return ErrInvalidDate
	}
	if !p.Item.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownServiceKind, p.Item)
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return CheckPrecision("amount", p.Amount)
}

// OptionalString returns nil for blank input so absent and empty read the same.
func OptionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
