package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/dashboard"
	"github.com/mamadbah2/household/internal/service/ledger"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates the message is not a known command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Usage is sent back when a command cannot be understood.
const Usage = `Commands:
/delivered <item> <qty>
/returned <item> <qty>
/paid <item> <amount> [reason]
/balance
Items: milk, water, house-cleaning, gardener`

// Ledger is the part of the dashboard controller the dispatcher writes through.
type Ledger interface {
	AddDelivery(ctx context.Context, event models.DeliveryEvent) (models.DeliveryEvent, error)
	AddPayment(ctx context.Context, payment models.PaymentRecord) (models.PaymentRecord, error)
	Outstanding() ledger.Amounts
	Today() models.Date
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	BalanceSummary(ctx context.Context) (string, error)
}

// Dispatcher executes parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger    Ledger
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(l Ledger, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    l,
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand applies the command to the ledger and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandDelivered, models.CommandReturned:
		event, err := s.buildDelivery(cmd)
		if err != nil {
			return "", err
		}
		saved, err := s.ledger.AddDelivery(ctx, event)
		if err != nil {
			return "", err
		}
		verb := "Delivery"
		if saved.Status == models.StatusReturned {
			verb = "Return"
		}
		message := fmt.Sprintf("%s saved for %s: %s %s %s.", verb, saved.Date, saved.Quantity.String(), saved.Item.Unit(), saved.Item.Label())
		return message + s.owedLine(saved.Item), nil
	case models.CommandPaid:
		payment, err := s.buildPayment(cmd)
		if err != nil {
			return "", err
		}
		saved, err := s.ledger.AddPayment(ctx, payment)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("Payment of %s saved for %s on %s.", saved.Amount.StringFixed(2), saved.Item.Label(), saved.Date)
		return message + s.owedLine(saved.Item), nil
	case models.CommandBalance:
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		return s.reporting.BalanceSummary(ctx)
	case models.CommandHelp:
		return Usage, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) owedLine(kind models.ServiceKind) string {
	return fmt.Sprintf("\n%s still owed: %s", kind.Label(), s.ledger.Outstanding()[kind].StringFixed(2))
}

func (s *Service) buildDelivery(cmd models.Command) (models.DeliveryEvent, error) {
	if len(cmd.Args) < 2 {
		return models.DeliveryEvent{}, ErrInvalidArguments
	}

	item, err := models.ParseServiceKind(cmd.Args[0])
	if err != nil {
		return models.DeliveryEvent{}, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	qty, err := parseNumber(cmd.Args[1])
	if err != nil {
		return models.DeliveryEvent{}, err
	}

	status := models.StatusDelivered
	if cmd.Type == models.CommandReturned {
		status = models.StatusReturned
	}

	return models.DeliveryEvent{
		Date:     s.ledger.Today(),
		Item:     item,
		Quantity: qty,
		Status:   status,
	}, nil
}

func (s *Service) buildPayment(cmd models.Command) (models.PaymentRecord, error) {
	if len(cmd.Args) < 2 {
		return models.PaymentRecord{}, ErrInvalidArguments
	}

	item, err := models.ParseServiceKind(cmd.Args[0])
	if err != nil {
		return models.PaymentRecord{}, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	amount, err := parseNumber(cmd.Args[1])
	if err != nil {
		return models.PaymentRecord{}, err
	}

	payment := models.PaymentRecord{
		Date:   s.ledger.Today(),
		Item:   item,
		Amount: amount,
	}
	if len(cmd.Args) > 2 {
		payment.Reason = models.OptionalString(strings.Join(cmd.Args[2:], " "))
	}
	return payment, nil
}

// parseNumber accepts a decimal comma as typed on French keyboards.
func parseNumber(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidArguments, value)
	}
	return d, nil
}

// Reply turns a dispatch error into a message for the sender. Unexpected
// errors get a generic apology.
func Reply(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedCommand), errors.Is(err, ErrInvalidArguments):
		return "Sorry, I did not understand that.\n" + Usage
	case errors.Is(err, dashboard.ErrZeroRate):
		return "That service has a rate of zero, so there is nothing to pay. Update the rate first."
	case errors.Is(err, models.ErrInvalidQuantity), errors.Is(err, models.ErrInvalidAmount):
		return "Quantities and amounts must be greater than zero."
	default:
		return "Something went wrong while saving. Please try again later."
	}
}
