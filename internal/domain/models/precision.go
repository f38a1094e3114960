package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxSignificantDigits is the precision a stored quantity or amount may carry.
const MaxSignificantDigits = 34

// ErrTooPrecise is returned for numbers with more significant digits than the
// store keeps.
var ErrTooPrecise = errors.New("too many significant digits")

// CheckPrecision rejects values with more than MaxSignificantDigits
// significant digits.
func CheckPrecision(field string, value decimal.Decimal) error {
	digits := strings.Trim(value.Coefficient().String(), "-0")
	if len(digits) > MaxSignificantDigits {
		return fmt.Errorf("%s: %w (max %d)", field, ErrTooPrecise, MaxSignificantDigits)
	}
	return nil
}
