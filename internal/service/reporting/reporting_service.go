package reporting

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/dashboard"
	"github.com/mamadbah2/household/internal/service/ledger"
)

// LedgerView is the read side of the dashboard controller.
type LedgerView interface {
	View(filter ledger.Filter) dashboard.View
	Today() models.Date
}

// Service renders short text summaries of the ledger for WhatsApp.
type Service struct {
	ledger LedgerView
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(view LedgerView, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: view, logger: logger}
}

// BalanceSummary lists what is owed per kind and how long ago each was last delivered.
func (s *Service) BalanceSummary(_ context.Context) (string, error) {
	view := s.ledger.View(ledger.Filter{})
	summary := view.Summary

	var b strings.Builder
	b.WriteString("Outstanding balances:")
	for _, kind := range models.AllServiceKinds() {
		fmt.Fprintf(&b, "\n- %s: %s", kind.Label(), formatAmount(summary.Outstanding[kind]))
		if days := summary.DaysWithoutDelivery[kind]; days != nil {
			fmt.Fprintf(&b, " (last delivery %s)", formatDays(*days))
		}
	}
	fmt.Fprintf(&b, "\nTotal: %s", formatAmount(summary.Outstanding.Total()))
	appendNotices(&b, view.Notices)

	return b.String(), nil
}

// GenerateWeeklyReport summarizes the week from Monday to today: what was
// consumed and billed, what was paid, and what is still owed overall.
func (s *Service) GenerateWeeklyReport(_ context.Context) (string, error) {
	today := s.ledger.Today()
	start := mondayStart(today)
	view := s.ledger.View(ledger.Filter{From: &start, To: &today})
	summary := view.Summary

	weekPaid := ledger.Payments(view.Payments)

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly household report (%s to %s)", start, today)

	active := 0
	for _, kind := range models.AllServiceKinds() {
		qty := summary.PeriodTotals[kind]
		paid := weekPaid[kind]
		if qty.IsZero() && paid.IsZero() {
			continue
		}
		active++
		fmt.Fprintf(&b, "\n- %s: %s %s, billed %s, paid %s",
			kind.Label(), qty.String(), kind.Unit(),
			formatAmount(summary.PeriodBill[kind]), formatAmount(paid))
	}
	if active == 0 {
		b.WriteString("\nNo deliveries or payments this week.")
	}

	fmt.Fprintf(&b, "\nStill owed overall: %s", formatAmount(summary.Outstanding.Total()))
	appendNotices(&b, view.Notices)

	s.logger.Debug("weekly report generated", zap.Int("active_kinds", active))
	return b.String(), nil
}

func appendNotices(b *strings.Builder, notices []string) {
	for _, notice := range notices {
		b.WriteString("\n! ")
		b.WriteString(notice)
	}
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func formatDays(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func mondayStart(d models.Date) models.Date {
	daysSinceMonday := (int(d.Weekday()) + 6) % 7
	return models.DateOf(d.AddDate(0, 0, -daysSinceMonday))
}
