// Package reminders asks the text generation service for milk and water
// reorder suggestions based on the household routine and the ledger.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/ledger"
	"github.com/mamadbah2/household/pkg/clients/anthropic"
)

const minDescriptionLength = 10

var (
	// ErrDisabled is returned when no text generation client is configured.
	ErrDisabled = errors.New("reminders are not configured")
	// ErrInvalidInput is returned when a description is too short to be useful.
	ErrInvalidInput = errors.New("invalid reminder input")
	// ErrGeneration wraps failures of the text generation service.
	ErrGeneration = errors.New("failed to generate reminders")
)

// DaysSource reports how long each kind has gone without a delivery.
type DaysSource interface {
	DaysWithoutDelivery() ledger.Days
}

// Request is the user-supplied part of a reminder prompt.
type Request struct {
	DeliverySchedule    string `json:"deliverySchedule" binding:"required"`
	ConsumptionPatterns string `json:"consumptionPatterns" binding:"required"`
}

// Validate checks both descriptions are at least ten characters long.
func (r Request) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(r.DeliverySchedule)) < minDescriptionLength {
		return fmt.Errorf("%w: delivery schedule must be at least %d characters", ErrInvalidInput, minDescriptionLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.ConsumptionPatterns)) < minDescriptionLength {
		return fmt.Errorf("%w: consumption patterns must be at least %d characters", ErrInvalidInput, minDescriptionLength)
	}
	return nil
}

// Service produces reorder reminders. It never writes to the ledger.
type Service struct {
	ai     anthropic.Client
	days   DaysSource
	logger *zap.Logger
}

// NewService builds the service. A nil ai client disables generation.
func NewService(ai anthropic.Client, days DaysSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ai: ai, days: days, logger: logger}
}

// Enabled reports whether a text generation client is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.ai != nil
}

// Generate validates req, adds the days without milk and water delivery
// (zero when a kind was never delivered) and asks for the reminders.
func (s *Service) Generate(ctx context.Context, req Request) (anthropic.Reminders, error) {
	if !s.Enabled() {
		return anthropic.Reminders{}, ErrDisabled
	}
	if err := req.Validate(); err != nil {
		return anthropic.Reminders{}, err
	}

	days := s.days.DaysWithoutDelivery()
	input := anthropic.ReminderInput{
		DeliverySchedule:         strings.TrimSpace(req.DeliverySchedule),
		ConsumptionPatterns:      strings.TrimSpace(req.ConsumptionPatterns),
		DaysWithoutDeliveryMilk:  orZero(days[models.Milk]),
		DaysWithoutDeliveryWater: orZero(days[models.Water]),
	}

	reminders, err := s.ai.GenerateReorderReminders(ctx, input)
	if err != nil {
		s.logger.Error("reminder generation failed", zap.Error(err))
		return anthropic.Reminders{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	s.logger.Info("reminders generated",
		zap.Int("days_without_milk", input.DaysWithoutDeliveryMilk),
		zap.Int("days_without_water", input.DaysWithoutDeliveryWater))
	return reminders, nil
}

// Format renders reminders as a single chat message.
func Format(r anthropic.Reminders) string {
	var lines []string
	if r.MilkReorderReminder != "" {
		lines = append(lines, "Milk: "+r.MilkReorderReminder)
	}
	if r.WaterReorderReminder != "" {
		lines = append(lines, "Water: "+r.WaterReorderReminder)
	}
	return strings.Join(lines, "\n")
}

func orZero(days *int) int {
	if days == nil {
		return 0
	}
	return *days
}
