// Package repository declares the persistence contract shared by the MongoDB
// and in-memory stores.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/household/internal/domain/models"
)

// ErrNotFound is returned when an update or delete targets a missing record.
var ErrNotFound = errors.New("record not found")

// Store persists deliveries, payments and the rate table. List operations
// return records ordered by date, most recent first.
type Store interface {
	ListDeliveries(ctx context.Context) ([]models.DeliveryEvent, error)
	InsertDelivery(ctx context.Context, event models.DeliveryEvent) (string, error)
	UpdateDelivery(ctx context.Context, event models.DeliveryEvent) error
	DeleteDelivery(ctx context.Context, id string) error

	ListPayments(ctx context.Context) ([]models.PaymentRecord, error)
	InsertPayment(ctx context.Context, payment models.PaymentRecord) (string, error)
	UpdatePayment(ctx context.Context, payment models.PaymentRecord) error
	DeletePayment(ctx context.Context, id string) error

	// GetRates returns the stored rate table, writing DefaultRates first when
	// none exists yet.
	GetRates(ctx context.Context) (models.RateTable, error)
	SaveRates(ctx context.Context, rates models.RateTable) error

	// DeleteByItem removes every delivery and payment of kind.
	DeleteByItem(ctx context.Context, kind models.ServiceKind) error
}
