// Package dashboard holds the in-memory ledger state and applies user commands
// to it after the document store has acknowledged them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/repository"
	"github.com/mamadbah2/household/internal/service/ledger"
)

var (
	// ErrNotFound indicates the referenced delivery or payment does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrZeroRate rejects a payment for a kind whose rate is zero.
	ErrZeroRate = errors.New("rate is zero, cannot record payment")
	// ErrNothingOwed rejects a prefilled settlement when no balance is outstanding.
	ErrNothingOwed = errors.New("nothing is owed for this item")
	// ErrStore wraps failures of the document store.
	ErrStore = errors.New("store unavailable")
)

var earliestDate = models.NewDate(2000, time.January, 1)

// Controller owns the dashboard state. Store writes run without holding the
// lock; their effect is applied to the state only once the store succeeds.
type Controller struct {
	store  repository.Store
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time

	mu      sync.RWMutex
	state   State
	loadErr error
}

// NewController builds a controller with empty state. Call Load to fetch data.
func NewController(store repository.Store, loc *time.Location, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Controller{
		store:  store,
		logger: logger,
		loc:    loc,
		now:    time.Now,
		state:  EmptyState(),
	}
}

// Load fetches deliveries, payments and rates in parallel. On failure the
// state falls back to empty collections and default rates and the error is
// kept so views can report it.
func (c *Controller) Load(ctx context.Context) error {
	var loaded State

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deliveries, err := c.store.ListDeliveries(ctx)
		if err != nil {
			return fmt.Errorf("load deliveries: %w", err)
		}
		loaded.Deliveries = deliveries
		return nil
	})
	g.Go(func() error {
		payments, err := c.store.ListPayments(ctx)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}
		loaded.Payments = payments
		return nil
	})
	g.Go(func() error {
		rates, err := c.store.GetRates(ctx)
		if err != nil {
			return fmt.Errorf("load rates: %w", err)
		}
		loaded.Rates = rates
		return nil
	})

	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error("failed to load ledger", zap.Error(err))
		c.state = EmptyState()
		c.loadErr = fmt.Errorf("%w: %w", ErrStore, err)
		return c.loadErr
	}

	c.state = Reduce(c.state, Loaded{State: loaded})
	c.loadErr = nil
	c.logger.Info("ledger loaded",
		zap.Int("deliveries", len(loaded.Deliveries)),
		zap.Int("payments", len(loaded.Payments)))
	return nil
}

// LoadError returns the error of the last Load, if any.
func (c *Controller) LoadError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Today returns the current calendar day in the controller's time zone.
func (c *Controller) Today() models.Date {
	return models.Today(c.now(), c.loc)
}

// DefaultFilter is the month-to-date window.
func (c *Controller) DefaultFilter() ledger.Filter {
	today := c.Today()
	from := today.StartOfMonth()
	return ledger.Filter{From: &from, To: &today}
}

// View is a filtered projection of the state with its ledger summary.
type View struct {
	Filter     ledger.Filter
	Deliveries []models.DeliveryEvent
	Payments   []models.PaymentRecord
	Rates      models.RateTable
	Summary    ledger.Summary
	Notices    []string
}

// View derives the filtered tables and the summary. Outstanding balances in
// the summary always use the full history.
func (c *Controller) View(filter ledger.Filter) View {
	c.mu.RLock()
	state, loadErr := c.state, c.loadErr
	c.mu.RUnlock()

	view := View{
		Filter:     filter,
		Deliveries: ledger.FilterDeliveries(state.Deliveries, filter),
		Payments:   ledger.FilterPayments(state.Payments, filter),
		Rates:      state.Rates,
		Summary:    ledger.Resolve(state.Deliveries, state.Payments, state.Rates, filter, c.Today()),
	}
	if loadErr != nil {
		view.Notices = append(view.Notices, "Could not load records or rates from the database.")
	}
	return view
}

// Outstanding returns the all-time balance per kind.
func (c *Controller) Outstanding() ledger.Amounts {
	state := c.Snapshot()
	return ledger.Outstanding(state.Deliveries, state.Payments, state.Rates)
}

// DaysWithoutDelivery returns the days since the last delivery per kind.
func (c *Controller) DaysWithoutDelivery() ledger.Days {
	return ledger.DaysWithoutDelivery(c.Snapshot().Deliveries, c.Today())
}

// Delivery returns the delivery with id, if any.
func (c *Controller) Delivery(id string) (models.DeliveryEvent, bool) {
	return c.Snapshot().delivery(id)
}

// Rates returns the current rate table.
func (c *Controller) Rates() models.RateTable {
	return c.Snapshot().Rates
}

// AddDelivery validates and stores a new delivery.
func (c *Controller) AddDelivery(ctx context.Context, event models.DeliveryEvent) (models.DeliveryEvent, error) {
	event.ID = ""
	if err := c.validateDelivery(event); err != nil {
		return models.DeliveryEvent{}, err
	}

	id, err := c.store.InsertDelivery(ctx, event)
	if err != nil {
		return models.DeliveryEvent{}, c.storeFailure("add delivery", err)
	}
	event.ID = id

	c.apply(DeliveryAdded{Event: event})
	c.logger.Info("delivery added",
		zap.String("id", id),
		zap.String("item", string(event.Item)),
		zap.String("status", string(event.Status)),
		zap.String("quantity", event.Quantity.String()))
	return event, nil
}

// UpdateDelivery replaces an existing delivery.
func (c *Controller) UpdateDelivery(ctx context.Context, event models.DeliveryEvent) (models.DeliveryEvent, error) {
	if _, ok := c.Snapshot().delivery(event.ID); !ok {
		return models.DeliveryEvent{}, ErrNotFound
	}
	if err := c.validateDelivery(event); err != nil {
		return models.DeliveryEvent{}, err
	}

	if err := c.store.UpdateDelivery(ctx, event); err != nil {
		return models.DeliveryEvent{}, c.storeFailure("update delivery", err)
	}

	c.apply(DeliveryUpdated{Event: event})
	c.logger.Info("delivery updated", zap.String("id", event.ID))
	return event, nil
}

// DeleteDelivery removes a delivery.
func (c *Controller) DeleteDelivery(ctx context.Context, id string) error {
	if _, ok := c.Snapshot().delivery(id); !ok {
		return ErrNotFound
	}
	if err := c.store.DeleteDelivery(ctx, id); err != nil {
		return c.storeFailure("delete delivery", err)
	}

	c.apply(DeliveryDeleted{ID: id})
	c.logger.Info("delivery deleted", zap.String("id", id))
	return nil
}

// AddPayment records a payment. Payments for a kind whose rate is zero are
// rejected before anything is written; UpdatePayment applies the same rule.
func (c *Controller) AddPayment(ctx context.Context, payment models.PaymentRecord) (models.PaymentRecord, error) {
	payment.ID = ""
	if err := c.validatePayment(payment); err != nil {
		return models.PaymentRecord{}, err
	}

	id, err := c.store.InsertPayment(ctx, payment)
	if err != nil {
		return models.PaymentRecord{}, c.storeFailure("add payment", err)
	}
	payment.ID = id

	c.apply(PaymentAdded{Payment: payment})
	c.logger.Info("payment added",
		zap.String("id", id),
		zap.String("item", string(payment.Item)),
		zap.String("amount", payment.Amount.String()))
	return payment, nil
}

// UpdatePayment replaces an existing payment.
func (c *Controller) UpdatePayment(ctx context.Context, payment models.PaymentRecord) (models.PaymentRecord, error) {
	if _, ok := c.Snapshot().payment(payment.ID); !ok {
		return models.PaymentRecord{}, ErrNotFound
	}
	if err := c.validatePayment(payment); err != nil {
		return models.PaymentRecord{}, err
	}

	if err := c.store.UpdatePayment(ctx, payment); err != nil {
		return models.PaymentRecord{}, c.storeFailure("update payment", err)
	}

	c.apply(PaymentUpdated{Payment: payment})
	c.logger.Info("payment updated", zap.String("id", payment.ID))
	return payment, nil
}

// DeletePayment removes a payment.
func (c *Controller) DeletePayment(ctx context.Context, id string) error {
	if _, ok := c.Snapshot().payment(id); !ok {
		return ErrNotFound
	}
	if err := c.store.DeletePayment(ctx, id); err != nil {
		return c.storeFailure("delete payment", err)
	}

	c.apply(PaymentDeleted{ID: id})
	c.logger.Info("payment deleted", zap.String("id", id))
	return nil
}

// SaveRates overwrites the rate table.
func (c *Controller) SaveRates(ctx context.Context, rates models.RateTable) (models.RateTable, error) {
	if err := rates.Validate(); err != nil {
		return models.RateTable{}, err
	}
	if err := c.store.SaveRates(ctx, rates); err != nil {
		return models.RateTable{}, c.storeFailure("save rates", err)
	}

	c.apply(RatesSaved{Rates: rates})
	c.logger.Info("rates saved")
	return rates, nil
}

// PurgeItem deletes every delivery and payment of kind.
func (c *Controller) PurgeItem(ctx context.Context, kind models.ServiceKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownServiceKind, kind)
	}
	if err := c.store.DeleteByItem(ctx, kind); err != nil {
		return c.storeFailure("purge item", err)
	}

	c.apply(ItemPurged{Item: kind})
	c.logger.Info("item purged", zap.String("item", string(kind)))
	return nil
}

// SettleRequest asks to record a payment against an outstanding balance.
// A nil Amount settles the full outstanding balance; a zero Date means today.
type SettleRequest struct {
	Item       models.ServiceKind
	Amount     *decimal.Decimal
	Date       models.Date
	Reason     *string
	Attachment *string
}

// Settle records a payment for req.Item. It does not mark deliveries as paid;
// the new payment simply lowers the outstanding balance on the next view.
func (c *Controller) Settle(ctx context.Context, req SettleRequest) (models.PaymentRecord, error) {
	if !req.Item.Valid() {
		return models.PaymentRecord{}, fmt.Errorf("%w: %q", models.ErrUnknownServiceKind, req.Item)
	}

	var amount decimal.Decimal
	if req.Amount != nil {
		amount = *req.Amount
	} else {
		amount = c.Outstanding()[req.Item]
		if !amount.IsPositive() {
			return models.PaymentRecord{}, fmt.Errorf("%w: %s", ErrNothingOwed, req.Item)
		}
	}

	date := req.Date
	if date.IsZero() {
		date = c.Today()
	}

	return c.AddPayment(ctx, models.PaymentRecord{
		Date:       date,
		Item:       req.Item,
		Amount:     amount,
		Reason:     req.Reason,
		Attachment: req.Attachment,
	})
}

func (c *Controller) apply(m Mutation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, m)
}

func (c *Controller) validateDelivery(event models.DeliveryEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return c.validateDate(event.Date)
}

// validatePayment also rejects payments for a kind priced at zero, since no
// bill could ever absorb them.
func (c *Controller) validatePayment(payment models.PaymentRecord) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	if err := c.validateDate(payment.Date); err != nil {
		return err
	}
	if c.Rates().For(payment.Item).IsZero() {
		return fmt.Errorf("%w: %s", ErrZeroRate, payment.Item)
	}
	return nil
}

func (c *Controller) validateDate(date models.Date) error {
	if date.Before(earliestDate) {
		return fmt.Errorf("%w: %s is before %s", models.ErrInvalidDate, date, earliestDate)
	}
	if today := c.Today(); date.After(today) {
		return fmt.Errorf("%w: %s is in the future", models.ErrInvalidDate, date)
	}
	return nil
}

func (c *Controller) storeFailure(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, models.ErrTooPrecise) {
		return err
	}
	c.logger.Error("store write failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
