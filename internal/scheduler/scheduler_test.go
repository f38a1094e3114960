package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/household/internal/config"
	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/reminders"
	"github.com/mamadbah2/household/pkg/clients/anthropic"
)

type fakeMessaging struct {
	sent []models.OutboundMessageRequest
}

func (f *fakeMessaging) VerifyWebhookToken(string, string, string) (string, error) { return "", nil }

func (f *fakeMessaging) HandleWebhook(context.Context, models.WebhookPayload) error { return nil }

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

type fakeReport struct{ err error }

func (f fakeReport) GenerateWeeklyReport(context.Context) (string, error) {
	return "weekly digest", f.err
}

type fakeReminders struct {
	enabled bool
	got     reminders.Request
	out     anthropic.Reminders
}

func (f *fakeReminders) Enabled() bool { return f.enabled }

func (f *fakeReminders) Generate(_ context.Context, req reminders.Request) (anthropic.Reminders, error) {
	f.got = req
	return f.out, nil
}

func testConfig() config.Config {
	return config.Config{
		Reminders: config.RemindersConfig{
			CronSchedule:        "0 8 * * *",
			Recipient:           "224600000001",
			DeliverySchedule:    "milk every morning",
			ConsumptionPatterns: "two kg of milk a day",
		},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * 5", Recipient: "224600000002", Timezone: "UTC"},
	}
}

func TestRunWeeklyReport(t *testing.T) {
	msg := &fakeMessaging{}
	s := NewScheduler(testConfig(), time.UTC, fakeReport{}, nil, msg, nil)

	require.NoError(t, s.runWeeklyReport(context.Background()))

	require.Len(t, msg.sent, 1)
	assert.Equal(t, "224600000002", msg.sent[0].To)
	assert.Equal(t, "weekly digest", msg.sent[0].Message)
}

func TestRunWeeklyReport_GenerationFailure(t *testing.T) {
	msg := &fakeMessaging{}
	s := NewScheduler(testConfig(), time.UTC, fakeReport{err: errors.New("boom")}, nil, msg, nil)

	assert.Error(t, s.runWeeklyReport(context.Background()))
	assert.Empty(t, msg.sent)
}

func TestRunReminders(t *testing.T) {
	msg := &fakeMessaging{}
	rem := &fakeReminders{enabled: true, out: anthropic.Reminders{MilkReorderReminder: "order milk"}}
	s := NewScheduler(testConfig(), time.UTC, nil, rem, msg, nil)

	require.NoError(t, s.runReminders(context.Background()))

	assert.Equal(t, "milk every morning", rem.got.DeliverySchedule)
	require.Len(t, msg.sent, 1)
	assert.Equal(t, "224600000001", msg.sent[0].To)
	assert.Equal(t, "Milk: order milk", msg.sent[0].Message)
}

func TestRunReminders_EmptyResultIsNotSent(t *testing.T) {
	msg := &fakeMessaging{}
	s := NewScheduler(testConfig(), time.UTC, nil, &fakeReminders{enabled: true}, msg, nil)

	assert.Error(t, s.runReminders(context.Background()))
	assert.Empty(t, msg.sent)
}

func TestStart_RegistersConfiguredJobs(t *testing.T) {
	s := NewScheduler(testConfig(), time.UTC, fakeReport{}, &fakeReminders{enabled: true}, &fakeMessaging{}, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 2)
}

func TestStart_SkipsDisabledJobs(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.Recipient = ""
	s := NewScheduler(cfg, nil, fakeReport{}, &fakeReminders{enabled: false}, &fakeMessaging{}, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Empty(t, s.cron.Entries())
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.CronSchedule = "every friday"
	s := NewScheduler(cfg, time.UTC, fakeReport{}, nil, &fakeMessaging{}, nil)

	assert.Error(t, s.Start())
}
