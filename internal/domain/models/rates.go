package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when a unit price is negative.
var ErrInvalidRate = errors.New("rate must not be negative")

// RateTable holds the unit price of every service kind. There is a single
// global table; changing it reprices the whole history.
type RateTable struct {
	Milk          decimal.Decimal `json:"milk"`
	Water         decimal.Decimal `json:"water"`
	HouseCleaning decimal.Decimal `json:"house-cleaning"`
	Gardener      decimal.Decimal `json:"gardener"`
}

// DefaultRates is written to the store the first time rates are read.
func DefaultRates() RateTable {
	return RateTable{
		Milk:          decimal.NewFromInt(220),
		Water:         decimal.NewFromInt(100),
		HouseCleaning: decimal.NewFromInt(1000),
		Gardener:      decimal.NewFromInt(1500),
	}
}

// For returns the unit price of kind. Unknown kinds cost nothing.
func (r RateTable) For(kind ServiceKind) decimal.Decimal {
	switch kind {
	case Milk:
		return r.Milk
	case Water:
		return r.Water
	case HouseCleaning:
		return r.HouseCleaning
	case Gardener:
		return r.Gardener
	default:
		return decimal.Zero
	}
}

// With returns a copy of r with kind priced at rate.
func (r RateTable) With(kind ServiceKind, rate decimal.Decimal) RateTable {
	switch kind {
	case Milk:
		r.Milk = rate
	case Water:
		r.Water = rate
	case HouseCleaning:
		r.HouseCleaning = rate
	case Gardener:
		r.Gardener = rate
	}
	return r
}

// Validate ensures every rate is non-negative and storable.
func (r RateTable) Validate() error {
	for _, kind := range serviceKinds {
		if r.For(kind).IsNegative() {
			return fmt.Errorf("%s: %w", kind, ErrInvalidRate)
		}
		if err := CheckPrecision(string(kind)+" rate", r.For(kind)); err != nil {
			return err
		}
	}
	return nil
}
