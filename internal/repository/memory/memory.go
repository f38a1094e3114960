// Package memory provides an in-process Store for development and tests.
package memory

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/repository"
)

// Store keeps every collection in memory. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	deliveries map[string]models.DeliveryEvent
	payments   map[string]models.PaymentRecord
	rates      *models.RateTable
	nextID     int
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		deliveries: make(map[string]models.DeliveryEvent),
		payments:   make(map[string]models.PaymentRecord),
	}
}

func (s *Store) newIDLocked(prefix string) string {
	s.nextID++
	return prefix + "-" + strconv.Itoa(s.nextID)
}

// ListDeliveries returns all deliveries, most recent first.
func (s *Store) ListDeliveries(_ context.Context) ([]models.DeliveryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DeliveryEvent, 0, len(s.deliveries))
	for _, event := range s.deliveries {
		out = append(out, event)
	}
	slices.SortFunc(out, func(a, b models.DeliveryEvent) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

// InsertDelivery stores event under a new id.
func (s *Store) InsertDelivery(_ context.Context, event models.DeliveryEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.newIDLocked("delivery")
	s.deliveries[event.ID] = event
	return event.ID, nil
}

// UpdateDelivery replaces the delivery with the same id.
func (s *Store) UpdateDelivery(_ context.Context, event models.DeliveryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deliveries[event.ID]; !ok {
		return repository.ErrNotFound
	}
	s.deliveries[event.ID] = event
	return nil
}

// DeleteDelivery removes the delivery with id.
func (s *Store) DeleteDelivery(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deliveries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.deliveries, id)
	return nil
}

// ListPayments returns all payments, most recent first.
func (s *Store) ListPayments(_ context.Context) ([]models.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PaymentRecord, 0, len(s.payments))
	for _, payment := range s.payments {
		out = append(out, payment)
	}
	slices.SortFunc(out, func(a, b models.PaymentRecord) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

// InsertPayment stores payment under a new id.
func (s *Store) InsertPayment(_ context.Context, payment models.PaymentRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment.ID = s.newIDLocked("payment")
	s.payments[payment.ID] = payment
	return payment.ID, nil
}

// UpdatePayment replaces the payment with the same id.
func (s *Store) UpdatePayment(_ context.Context, payment models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[payment.ID]; !ok {
		return repository.ErrNotFound
	}
	s.payments[payment.ID] = payment
	return nil
}

// DeletePayment removes the payment with id.
func (s *Store) DeletePayment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.payments, id)
	return nil
}

// GetRates returns the rate table, seeding defaults on first use.
func (s *Store) GetRates(_ context.Context) (models.RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rates == nil {
		defaults := models.DefaultRates()
		s.rates = &defaults
	}
	return *s.rates, nil
}

// SaveRates overwrites the rate table.
func (s *Store) SaveRates(_ context.Context, rates models.RateTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rates = &rates
	return nil
}

// DeleteByItem removes every delivery and payment of kind.
func (s *Store) DeleteByItem(_ context.Context, kind models.ServiceKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, event := range s.deliveries {
		if event.Item == kind {
			delete(s.deliveries, id)
		}
	}
	for id, payment := range s.payments {
		if payment.Item == kind {
			delete(s.payments, id)
		}
	}
	return nil
}

// ids are "<prefix>-<n>"; compare n numerically so insertion order is stable.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
