package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/dashboard"
	"github.com/mamadbah2/household/internal/service/ledger"
)

type fakeLedger struct {
	deliveries []models.DeliveryEvent
	payments   []models.PaymentRecord
	err        error
}

func (f *fakeLedger) AddDelivery(_ context.Context, e models.DeliveryEvent) (models.DeliveryEvent, error) {
	if f.err != nil {
		return models.DeliveryEvent{}, f.err
	}
	e.ID = "d1"
	f.deliveries = append(f.deliveries, e)
	return e, nil
}

func (f *fakeLedger) AddPayment(_ context.Context, p models.PaymentRecord) (models.PaymentRecord, error) {
	if f.err != nil {
		return models.PaymentRecord{}, f.err
	}
	p.ID = "p1"
	f.payments = append(f.payments, p)
	return p, nil
}

func (f *fakeLedger) Outstanding() ledger.Amounts {
	return ledger.Outstanding(f.deliveries, f.payments, models.DefaultRates())
}

func (f *fakeLedger) Today() models.Date { return models.NewDate(2025, time.March, 10) }

type fakeReporting struct{}

func (fakeReporting) BalanceSummary(context.Context) (string, error) { return "all good", nil }

func TestHandleCommand_Delivered(t *testing.T) {
	l := &fakeLedger{}
	svc := NewService(l, fakeReporting{}, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/delivered Milk 2,5"), "224600000000")
	require.NoError(t, err)

	require.Len(t, l.deliveries, 1)
	got := l.deliveries[0]
	assert.Equal(t, models.Milk, got.Item)
	assert.Equal(t, models.StatusDelivered, got.Status)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, models.NewDate(2025, time.March, 10), got.Date)
	assert.Equal(t, "Delivery saved for 2025-03-10: 2.5 kg Milk.\nMilk still owed: 550.00", reply)
}

func TestHandleCommand_Returned(t *testing.T) {
	l := &fakeLedger{}
	svc := NewService(l, nil, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("returned water 1"), "x")
	require.NoError(t, err)

	require.Len(t, l.deliveries, 1)
	assert.Equal(t, models.StatusReturned, l.deliveries[0].Status)
	assert.Contains(t, reply, "Return saved")
	assert.Contains(t, reply, "Water still owed: -100.00")
}

func TestHandleCommand_Paid(t *testing.T) {
	l := &fakeLedger{}
	svc := NewService(l, nil, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/paid house_cleaning 1000 March Visit"), "x")
	require.NoError(t, err)

	require.Len(t, l.payments, 1)
	p := l.payments[0]
	assert.Equal(t, models.HouseCleaning, p.Item)
	require.NotNil(t, p.Reason)
	assert.Equal(t, "March Visit", *p.Reason)
	assert.Contains(t, reply, "Payment of 1000.00 saved for House cleaning")
}

func TestHandleCommand_Balance(t *testing.T) {
	svc := NewService(&fakeLedger{}, fakeReporting{}, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/BALANCE"), "x")
	require.NoError(t, err)
	assert.Equal(t, "all good", reply)

	_, err = NewService(&fakeLedger{}, nil, nil).HandleCommand(context.Background(), models.ParseCommand("/balance"), "x")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestHandleCommand_InvalidInput(t *testing.T) {
	svc := NewService(&fakeLedger{}, nil, nil)
	ctx := context.Background()

	tests := []struct {
		message string
		want    error
	}{
		{"/delivered milk", ErrInvalidArguments},
		{"/delivered bread 2", ErrInvalidArguments},
		{"/delivered milk two", ErrInvalidArguments},
		{"/paid milk", ErrInvalidArguments},
		{"hello there", ErrUnsupportedCommand},
		{"", ErrUnsupportedCommand},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			_, err := svc.HandleCommand(ctx, models.ParseCommand(tt.message), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHandleCommand_Help(t *testing.T) {
	reply, err := NewService(&fakeLedger{}, nil, nil).HandleCommand(context.Background(), models.ParseCommand("/help"), "x")
	require.NoError(t, err)
	assert.Equal(t, Usage, reply)
}

func TestHandleCommand_LedgerErrorPassesThrough(t *testing.T) {
	svc := NewService(&fakeLedger{err: dashboard.ErrZeroRate}, nil, nil)

	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("/paid water 10"), "x")
	assert.ErrorIs(t, err, dashboard.ErrZeroRate)
	assert.Contains(t, Reply(err), "rate of zero")
}

func TestReply(t *testing.T) {
	assert.Contains(t, Reply(ErrUnsupportedCommand), "/delivered")
	assert.Contains(t, Reply(models.ErrInvalidAmount), "greater than zero")
	assert.Contains(t, Reply(errors.New("mongo down")), "try again")
}
