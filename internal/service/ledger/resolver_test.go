package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/household/internal/domain/models"
)

func kindPtr(k models.ServiceKind) *models.ServiceKind { return &k }
func datePtr(d models.Date) *models.Date { return &d }

func TestOutstanding_NoPayments(t *testing.T) {
	events := []models.DeliveryEvent{
		delivery(models.Milk, "10", models.StatusDelivered, models.NewDate(2025, time.January, 1)),
		delivery(models.Milk, "2", models.StatusReturned, models.NewDate(2025, time.January, 2)),
	}
	rates := models.DefaultRates().With(models.Milk, dec("100"))

	outstanding := Outstanding(events, nil, rates)

	assertDecimal(t, "800", outstanding[models.Milk])
}

func TestOutstanding_AfterPayment(t *testing.T) {
	events := []models.DeliveryEvent{
		delivery(models.Milk, "10", models.StatusDelivered, models.NewDate(2025, time.January, 1)),
		delivery(models.Milk, "2", models.StatusReturned, models.NewDate(2025, time.January, 2)),
	}
	payments := []models.PaymentRecord{
		{Item: models.Milk, Amount: dec("300"), Date: models.NewDate(2025, time.January, 3)},
	}
	rates := models.DefaultRates().With(models.Milk, dec("100"))

	outstanding := Outstanding(events, payments, rates)

	assertDecimal(t, "500", outstanding[models.Milk])
}

func TestResolve_OutstandingIgnoresFilter(t *testing.T) {
	events := sampleEvents()
	payments := []models.PaymentRecord{
		{Item: models.Water, Amount: dec("120"), Date: models.NewDate(2025, time.March, 4)},
		{Item: models.Gardener, Amount: dec("200"), Date: models.NewDate(2025, time.January, 4)},
	}
	rates := models.DefaultRates()
	today := models.NewDate(2025, time.March, 10)
	want := Bill(Totals(events), rates).Sub(Payments(payments))

	filters := []Filter{
		{},
		{Item: kindPtr(models.Water)},
		{From: datePtr(models.NewDate(2025, time.March, 3)), To: datePtr(models.NewDate(2025, time.March, 3))},
		{Item: kindPtr(models.Gardener), From: datePtr(models.NewDate(2030, time.January, 1))},
	}

	for i, f := range filters {
		summary := Resolve(events, payments, rates, f, today)
		for _, kind := range models.AllServiceKinds() {
			assert.Truef(t, want[kind].Equal(summary.Outstanding[kind]), "filter %d kind %s", i, kind)
		}
	}
}

func TestResolve_PeriodBillUsesFilter(t *testing.T) {
	events := sampleEvents()
	rates := models.DefaultRates().With(models.Milk, dec("100")).With(models.Water, dec("10"))
	f := Filter{
		From: datePtr(models.NewDate(2025, time.March, 2)),
		To:   datePtr(models.NewDate(2025, time.March, 3)),
	}

	summary := Resolve(events, nil, rates, f, models.NewDate(2025, time.March, 10))

	assertDecimal(t, "-200", summary.PeriodBill[models.Milk])
	assertDecimal(t, "30", summary.PeriodBill[models.Water])
	assertDecimal(t, "0", summary.PeriodBill[models.Gardener])
	assertDecimal(t, "800", summary.AllTimeBill[models.Milk])
	assertDecimal(t, "45", summary.AllTimeBill[models.Water])
}

func TestPeriodBill_MatchesResolve(t *testing.T) {
	events := sampleEvents()
	rates := models.DefaultRates()
	f := Filter{Item: kindPtr(models.Water)}

	period := PeriodBill(events, rates, f)
	summary := Resolve(events, nil, rates, f, models.NewDate(2025, time.March, 10))

	for _, kind := range models.AllServiceKinds() {
		assert.True(t, period[kind].Equal(summary.PeriodBill[kind]), kind)
	}
	assertDecimal(t, "0", period[models.Milk])
}

func TestFilter_InclusiveWholeDays(t *testing.T) {
	day := models.NewDate(2025, time.March, 3)
	f := Filter{From: datePtr(day), To: datePtr(day)}

	assert.True(t, f.MatchDelivery(delivery(models.Water, "1", models.StatusDelivered, day)))
	assert.False(t, f.MatchDelivery(delivery(models.Water, "1", models.StatusDelivered, models.NewDate(2025, time.March, 4))))
	assert.False(t, f.MatchDelivery(delivery(models.Water, "1", models.StatusDelivered, models.NewDate(2025, time.March, 2))))
}

func TestFilterPayments(t *testing.T) {
	payments := []models.PaymentRecord{
		{ID: "a", Item: models.Milk, Amount: dec("1"), Date: models.NewDate(2025, time.March, 1)},
		{ID: "b", Item: models.Water, Amount: dec("1"), Date: models.NewDate(2025, time.March, 2)},
		{ID: "c", Item: models.Milk, Amount: dec("1"), Date: models.NewDate(2025, time.April, 2)},
	}

	got := FilterPayments(payments, Filter{Item: kindPtr(models.Milk), To: datePtr(models.NewDate(2025, time.March, 31))})

	if assert.Len(t, got, 1) {
		assert.Equal(t, "a", got[0].ID)
	}
}
