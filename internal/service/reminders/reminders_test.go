package reminders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/ledger"
	"github.com/mamadbah2/household/pkg/clients/anthropic"
)

type fakeAI struct {
	got anthropic.ReminderInput
	err error
}

func (f *fakeAI) GenerateReorderReminders(_ context.Context, in anthropic.ReminderInput) (anthropic.Reminders, error) {
	f.got = in
	if f.err != nil {
		return anthropic.Reminders{}, f.err
	}
	return anthropic.Reminders{MilkReorderReminder: "order milk", WaterReorderReminder: "order water"}, nil
}

type fixedDays ledger.Days

func (d fixedDays) DaysWithoutDelivery() ledger.Days { return ledger.Days(d) }

func intPtr(v int) *int { return &v }

var validRequest = Request{
	DeliverySchedule:    "milk every morning, water on mondays",
	ConsumptionPatterns: "two kg of milk and one bottle a day",
}

func TestGenerate_PassesDaysWithoutDelivery(t *testing.T) {
	ai := &fakeAI{}
	days := fixedDays{models.Milk: intPtr(3), models.Water: nil}
	svc := NewService(ai, days, nil)

	got, err := svc.Generate(context.Background(), validRequest)
	require.NoError(t, err)

	assert.Equal(t, "order milk", got.MilkReorderReminder)
	assert.Equal(t, 3, ai.got.DaysWithoutDeliveryMilk)
	assert.Equal(t, 0, ai.got.DaysWithoutDeliveryWater)
	assert.Equal(t, validRequest.DeliverySchedule, ai.got.DeliverySchedule)
}

func TestGenerate_Validation(t *testing.T) {
	ai := &fakeAI{}
	svc := NewService(ai, fixedDays{}, nil)

	_, err := svc.Generate(context.Background(), Request{DeliverySchedule: "short", ConsumptionPatterns: validRequest.ConsumptionPatterns})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Generate(context.Background(), Request{DeliverySchedule: validRequest.DeliverySchedule, ConsumptionPatterns: "         x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, ai.got.DeliverySchedule)
}

func TestGenerate_Disabled(t *testing.T) {
	svc := NewService(nil, fixedDays{}, nil)

	assert.False(t, svc.Enabled())
	_, err := svc.Generate(context.Background(), validRequest)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestGenerate_FailureIsWrapped(t *testing.T) {
	cause := errors.New("timeout")
	svc := NewService(&fakeAI{err: cause}, fixedDays{}, nil)

	_, err := svc.Generate(context.Background(), validRequest)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, cause)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Milk: a\nWater: b", Format(anthropic.Reminders{MilkReorderReminder: "a", WaterReorderReminder: "b"}))
	assert.Equal(t, "Water: b", Format(anthropic.Reminders{WaterReorderReminder: "b"}))
}
