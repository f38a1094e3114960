// Package statement turns the ledger into tabular statements that can be
// downloaded as a workbook or appended to a shared spreadsheet.
package statement

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/dashboard"
	"github.com/mamadbah2/household/internal/service/ledger"
)

const (
	deliveriesSheet = "Deliveries"
	paymentsSheet   = "Payments"
	balancesSheet   = "Balances"

	deliveriesRange = "Deliveries!A:F"
	paymentsRange   = "Payments!A:E"
	balancesRange   = "Balances!A:E"
)

// ErrExportDisabled is returned when no spreadsheet is configured.
var ErrExportDisabled = errors.New("spreadsheet export is not configured")

var (
	deliveriesHeader = []interface{}{"Date", "Item", "Status", "Quantity", "Billed quantity", "Amount"}
	paymentsHeader   = []interface{}{"Date", "Item", "Amount", "Reason", "Attachment"}
	balancesHeader   = []interface{}{"Item", "Quantity", "Billed", "Paid", "Outstanding"}
)

// LedgerView is the read side of the dashboard controller.
type LedgerView interface {
	View(filter ledger.Filter) dashboard.View
}

// Appender writes rows to a spreadsheet range.
type Appender interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Statement is a rendered view: the filtered deliveries and payments plus
// the all-time balance of every kind.
type Statement struct {
	Filter     ledger.Filter
	Deliveries [][]interface{}
	Payments   [][]interface{}
	Balances   [][]interface{}
}

// Service builds and exports statements.
type Service struct {
	ledger LedgerView
	sheets Appender
	logger *zap.Logger
}

// NewService wires the service. sheets may be nil when export is disabled.
func NewService(view LedgerView, sheets Appender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: view, sheets: sheets, logger: logger}
}

// ExportEnabled reports whether statements can be appended to a spreadsheet.
func (s *Service) ExportEnabled() bool {
	return s.sheets != nil
}

// Build renders the statement for filter.
func (s *Service) Build(filter ledger.Filter) Statement {
	view := s.ledger.View(filter)
	st := Statement{Filter: filter}

	for _, e := range view.Deliveries {
		var billed interface{} = ""
		if e.BilledQuantity != nil {
			billed = number(*e.BilledQuantity)
		}
		amount := e.SignedQuantity().Mul(view.Rates.For(e.Item))
		st.Deliveries = append(st.Deliveries, []interface{}{
			e.Date.String(), string(e.Item), string(e.Status), number(e.Quantity), billed, number(amount),
		})
	}

	for _, p := range view.Payments {
		st.Payments = append(st.Payments, []interface{}{
			p.Date.String(), string(p.Item), number(p.Amount), deref(p.Reason), deref(p.Attachment),
		})
	}

	summary := view.Summary
	for _, kind := range models.AllServiceKinds() {
		st.Balances = append(st.Balances, []interface{}{
			string(kind),
			number(summary.AllTimeTotals[kind]),
			number(summary.AllTimeBill[kind]),
			number(summary.Paid[kind]),
			number(summary.Outstanding[kind]),
		})
	}

	return st
}

// WriteXLSX renders st as a workbook with one sheet per table.
func (s *Service) WriteXLSX(w io.Writer, st Statement) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", deliveriesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{paymentsSheet, balancesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	tables := []struct {
		sheet  string
		header []interface{}
		rows   [][]interface{}
	}{
		{deliveriesSheet, deliveriesHeader, st.Deliveries},
		{paymentsSheet, paymentsHeader, st.Payments},
		{balancesSheet, balancesHeader, st.Balances},
	}
	for _, table := range tables {
		if err := writeTable(f, table.sheet, table.header, table.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	for i, row := range append([][]interface{}{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// Export appends st to the configured spreadsheet.
func (s *Service) Export(ctx context.Context, st Statement) error {
	if s.sheets == nil {
		return ErrExportDisabled
	}

	batches := []struct {
		sheetRange string
		rows       [][]interface{}
	}{
		{deliveriesRange, st.Deliveries},
		{paymentsRange, st.Payments},
		{balancesRange, st.Balances},
	}
	for _, batch := range batches {
		if err := s.sheets.AppendRows(ctx, batch.sheetRange, batch.rows); err != nil {
			return fmt.Errorf("export statement: %w", err)
		}
	}

	s.logger.Info("statement exported",
		zap.Int("deliveries", len(st.Deliveries)),
		zap.Int("payments", len(st.Payments)))
	return nil
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
