package ledger

import (
	"github.com/mamadbah2/household/internal/domain/models"
)

// Filter narrows the period view. Nil fields are unbounded and both date
// bounds are inclusive whole days.
type Filter struct {
	Item *models.ServiceKind
	From *models.Date
	To   *models.Date
}

// MatchDelivery reports whether event falls inside the filter.
func (f Filter) MatchDelivery(event models.DeliveryEvent) bool {
	return f.match(event.Item, event.Date)
}

// MatchPayment reports whether payment falls inside the filter.
func (f Filter) MatchPayment(payment models.PaymentRecord) bool {
	return f.match(payment.Item, payment.Date)
}

func (f Filter) match(item models.ServiceKind, date models.Date) bool {
	if f.Item != nil && *f.Item != item {
		return false
	}
	if f.From != nil && date.Before(*f.From) {
		return false
	}
	if f.To != nil && date.After(*f.To) {
		return false
	}
	return true
}

// FilterDeliveries returns the events matching f, keeping their order.
func FilterDeliveries(events []models.DeliveryEvent, f Filter) []models.DeliveryEvent {
	out := make([]models.DeliveryEvent, 0, len(events))
	for _, event := range events {
		if f.MatchDelivery(event) {
			out = append(out, event)
		}
	}
	return out
}

// FilterPayments returns the payments matching f, keeping their order.
func FilterPayments(payments []models.PaymentRecord, f Filter) []models.PaymentRecord {
	out := make([]models.PaymentRecord, 0, len(payments))
	for _, payment := range payments {
		if f.MatchPayment(payment) {
			out = append(out, payment)
		}
	}
	return out
}

// PeriodBill prices only the events inside f.
func PeriodBill(events []models.DeliveryEvent, rates models.RateTable, f Filter) Amounts {
	return Bill(Totals(FilterDeliveries(events, f)), rates)
}

// Outstanding is the all-time bill minus all-time payments per kind. It never
// takes a filter: narrowing the view must not hide debt.
func Outstanding(events []models.DeliveryEvent, payments []models.PaymentRecord, rates models.RateTable) Amounts {
	return Bill(Totals(events), rates).Sub(Payments(payments))
}

// Summary is everything the dashboard shows about the ledger.
type Summary struct {
	PeriodTotals        Quantities `json:"periodTotals"`
	PeriodBill          Amounts    `json:"periodBill"`
	AllTimeTotals       Quantities `json:"allTimeTotals"`
	AllTimeBill         Amounts    `json:"allTimeBill"`
	Paid                Amounts    `json:"paid"`
	Outstanding         Amounts    `json:"outstanding"`
	DaysWithoutDelivery Days       `json:"daysWithoutDelivery"`
}

// Resolve computes the period view for f next to the unfiltered balances.
func Resolve(events []models.DeliveryEvent, payments []models.PaymentRecord, rates models.RateTable, f Filter, today models.Date) Summary {
	periodTotals := Totals(FilterDeliveries(events, f))
	allTotals := Totals(events)
	allBill := Bill(allTotals, rates)
	paid := Payments(payments)

	return Summary{
		PeriodTotals:        periodTotals,
		PeriodBill:          Bill(periodTotals, rates),
		AllTimeTotals:       allTotals,
		AllTimeBill:         allBill,
		Paid:                paid,
		Outstanding:         allBill.Sub(paid),
		DaysWithoutDelivery: DaysWithoutDelivery(events, today),
	}
}
