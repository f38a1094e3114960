package dashboard

import (
	"slices"

	"github.com/mamadbah2/household/internal/domain/models"
)

// State is the full, unfiltered in-memory ledger. Values are never modified in
// place; Reduce always returns a fresh State.
type State struct {
	Deliveries []models.DeliveryEvent
	Payments   []models.PaymentRecord
	Rates      models.RateTable
}

// EmptyState is what the dashboard shows before anything could be loaded.
func EmptyState() State {
	return State{Rates: models.DefaultRates()}
}

// Mutation is an acknowledged store write that Reduce folds into a State.
type Mutation interface {
	apply(State) State
}

// Reduce returns the state that results from applying m to s.
func Reduce(s State, m Mutation) State {
	if m == nil {
		return s
	}
	return m.apply(s)
}

// DeliveryAdded inserts a delivery and re-sorts by date, newest first.
type DeliveryAdded struct{ Event models.DeliveryEvent }

// DeliveryUpdated replaces the delivery with the same id.
type DeliveryUpdated struct{ Event models.DeliveryEvent }

// DeliveryDeleted removes the delivery with ID.
type DeliveryDeleted struct{ ID string }

// PaymentAdded inserts a payment and re-sorts by date, newest first.
type PaymentAdded struct{ Payment models.PaymentRecord }

// PaymentUpdated replaces the payment with the same id.
type PaymentUpdated struct{ Payment models.PaymentRecord }

// PaymentDeleted removes the payment with ID.
type PaymentDeleted struct{ ID string }

// RatesSaved replaces the rate table.
type RatesSaved struct{ Rates models.RateTable }

// ItemPurged drops every delivery and payment of Item.
type ItemPurged struct{ Item models.ServiceKind }

// Loaded replaces the whole state with freshly fetched collections.
type Loaded struct{ State State }

func (m DeliveryAdded) apply(s State) State {
	deliveries := append(slices.Clone(s.Deliveries), m.Event)
	s.Deliveries = sortDeliveries(deliveries)
	s.Payments = slices.Clone(s.Payments)
	return s
}

func (m DeliveryUpdated) apply(s State) State {
	deliveries := slices.Clone(s.Deliveries)
	for i := range deliveries {
		if deliveries[i].ID == m.Event.ID {
			deliveries[i] = m.Event
		}
	}
	s.Deliveries = sortDeliveries(deliveries)
	s.Payments = slices.Clone(s.Payments)
	return s
}

func (m DeliveryDeleted) apply(s State) State {
	s.Deliveries = slices.DeleteFunc(slices.Clone(s.Deliveries), func(e models.DeliveryEvent) bool {
		return e.ID == m.ID
	})
	s.Payments = slices.Clone(s.Payments)
	return s
}

func (m PaymentAdded) apply(s State) State {
	payments := append(slices.Clone(s.Payments), m.Payment)
	s.Payments = sortPayments(payments)
	s.Deliveries = slices.Clone(s.Deliveries)
	return s
}

func (m PaymentUpdated) apply(s State) State {
	payments := slices.Clone(s.Payments)
	for i := range payments {
		if payments[i].ID == m.Payment.ID {
			payments[i] = m.Payment
		}
	}
	s.Payments = sortPayments(payments)
	s.Deliveries = slices.Clone(s.Deliveries)
	return s
}

func (m PaymentDeleted) apply(s State) State {
	s.Payments = slices.DeleteFunc(slices.Clone(s.Payments), func(p models.PaymentRecord) bool {
		return p.ID == m.ID
	})
	s.Deliveries = slices.Clone(s.Deliveries)
	return s
}

func (m RatesSaved) apply(s State) State {
	s.Deliveries = slices.Clone(s.Deliveries)
	s.Payments = slices.Clone(s.Payments)
	s.Rates = m.Rates
	return s
}

func (m ItemPurged) apply(s State) State {
	s.Deliveries = slices.DeleteFunc(slices.Clone(s.Deliveries), func(e models.DeliveryEvent) bool {
		return e.Item == m.Item
	})
	s.Payments = slices.DeleteFunc(slices.Clone(s.Payments), func(p models.PaymentRecord) bool {
		return p.Item == m.Item
	})
	return s
}

func (m Loaded) apply(State) State {
	return State{
		Deliveries: sortDeliveries(slices.Clone(m.State.Deliveries)),
		Payments:   sortPayments(slices.Clone(m.State.Payments)),
		Rates:      m.State.Rates,
	}
}

// delivery returns the delivery with id, if present.
func (s State) delivery(id string) (models.DeliveryEvent, bool) {
	for _, e := range s.Deliveries {
		if e.ID == id {
			return e, true
		}
	}
	return models.DeliveryEvent{}, false
}

func (s State) payment(id string) (models.PaymentRecord, bool) {
	for _, p := range s.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return models.PaymentRecord{}, false
}

func sortDeliveries(deliveries []models.DeliveryEvent) []models.DeliveryEvent {
	slices.SortStableFunc(deliveries, func(a, b models.DeliveryEvent) int {
		return b.Date.Compare(a.Date.Time)
	})
	return deliveries
}

func sortPayments(payments []models.PaymentRecord) []models.PaymentRecord {
	slices.SortStableFunc(payments, func(a, b models.PaymentRecord) int {
		return b.Date.Compare(a.Date.Time)
	})
	return payments
}
