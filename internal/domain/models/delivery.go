package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Status describes whether a delivery was received or sent back.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusReturned  Status = "returned"
)

var (
	ErrInvalidStatus   = errors.New("invalid delivery status")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// ParseStatus maps user or stored input to a Status. An empty value is read as
// delivered, which is what records written before statuses existed mean.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case "", StatusDelivered:
		return StatusDelivered, nil
	case StatusReturned:
		return StatusReturned, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
}

// DeliveryEvent is one logged occurrence of a service being rendered or returned.
type DeliveryEvent struct {
	ID       string          `json:"id"`
	Date     Date            `json:"date"`
	Item     ServiceKind     `json:"item"`
	Quantity decimal.Decimal `json:"quantity"`
	Status   Status          `json:"status"`

	// BilledQuantity is kept for reference only; totals always use Quantity.
	BilledQuantity *decimal.Decimal `json:"billedQuantity,omitempty"`
}

// SignedQuantity is the event's contribution to its kind's running total.
func (e DeliveryEvent) SignedQuantity() decimal.Decimal {
	if e.Status == StatusReturned {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// Validate checks the invariants of a user-entered delivery.
func (e DeliveryEvent) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if !e.Item.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownServiceKind, e.Item)
	}
	if e.Status != StatusDelivered && e.Status != StatusReturned {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if !e.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if err := CheckPrecision("quantity", e.Quantity); err != nil {
		return err
	}
	if e.BilledQuantity != nil {
		if e.BilledQuantity.IsNegative() {
			return fmt.Errorf("billed quantity: %w", ErrInvalidQuantity)
		}
		if err := CheckPrecision("billed quantity", *e.BilledQuantity); err != nil {
			return err
		}
	}
	return nil
}
