// Package ledger turns delivery and payment history into quantities, bills and
// outstanding balances. Everything here is pure: no I/O, no clock reads.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/household/internal/domain/models"
)

// Quantities holds a net quantity per service kind.
type Quantities map[models.ServiceKind]decimal.Decimal

// Amounts holds a monetary value per service kind.
type Amounts map[models.ServiceKind]decimal.Decimal

// Days holds the days since the last delivery per kind; nil means no delivery yet.
type Days map[models.ServiceKind]*int

func zeroed() map[models.ServiceKind]decimal.Decimal {
	out := make(map[models.ServiceKind]decimal.Decimal, 4)
	for _, kind := range models.AllServiceKinds() {
		out[kind] = decimal.Zero
	}
	return out
}

// Totals folds events into a net quantity per kind. Delivered events add their
// quantity and returned events subtract it, so the result does not depend on
// the order of events.
func Totals(events []models.DeliveryEvent) Quantities {
	totals := Quantities(zeroed())
	for _, event := range events {
		if !event.Item.Valid() {
			continue
		}
		totals[event.Item] = totals[event.Item].Add(event.SignedQuantity())
	}
	return totals
}

// Bill prices every kind's net quantity at its rate. No rounding is applied.
func Bill(totals Quantities, rates models.RateTable) Amounts {
	bill := Amounts(zeroed())
	for _, kind := range models.AllServiceKinds() {
		bill[kind] = totals[kind].Mul(rates.For(kind))
	}
	return bill
}

// Payments sums payment amounts per kind.
func Payments(payments []models.PaymentRecord) Amounts {
	paid := Amounts(zeroed())
	for _, payment := range payments {
		if !payment.Item.Valid() {
			continue
		}
		paid[payment.Item] = paid[payment.Item].Add(payment.Amount)
	}
	return paid
}

// DaysWithoutDelivery returns, per kind, how many calendar days separate today
// from the most recent delivered event. Returned events are not deliveries.
func DaysWithoutDelivery(events []models.DeliveryEvent, today models.Date) Days {
	latest := make(map[models.ServiceKind]models.Date, 4)
	for _, event := range events {
		if event.Status != models.StatusDelivered || !event.Item.Valid() {
			continue
		}
		if current, ok := latest[event.Item]; !ok || event.Date.After(current) {
			latest[event.Item] = event.Date
		}
	}

	days := make(Days, 4)
	for _, kind := range models.AllServiceKinds() {
		last, ok := latest[kind]
		if !ok {
			days[kind] = nil
			continue
		}
		n := today.DaysSince(last)
		if n < 0 {
			n = 0
		}
		days[kind] = &n
	}
	return days
}

// Sub returns a - b per kind.
func (a Amounts) Sub(b Amounts) Amounts {
	out := Amounts(zeroed())
	for _, kind := range models.AllServiceKinds() {
		out[kind] = a[kind].Sub(b[kind])
	}
	return out
}

// Total returns the sum over all kinds.
func (a Amounts) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, kind := range models.AllServiceKinds() {
		sum = sum.Add(a[kind])
	}
	return sum
}
