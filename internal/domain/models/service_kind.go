package models

import (
	"errors"
	"fmt"
	"strings"
)

// ServiceKind enumerates the billable household services.
type ServiceKind string

const (
	Milk          ServiceKind = "milk"
	Water         ServiceKind = "water"
	HouseCleaning ServiceKind = "house-cleaning"
	Gardener      ServiceKind = "gardener"
)

// ErrUnknownServiceKind is returned when a value is not one of the four service kinds.
var ErrUnknownServiceKind = errors.New("unknown service kind")

var serviceKinds = []ServiceKind{Milk, Water, HouseCleaning, Gardener}

// AllServiceKinds returns every service kind in display order.
func AllServiceKinds() []ServiceKind {
	out := make([]ServiceKind, len(serviceKinds))
	copy(out, serviceKinds)
	return out
}

// ParseServiceKind normalizes user input into a ServiceKind.
func ParseServiceKind(value string) (ServiceKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")

	kind := ServiceKind(normalized)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownServiceKind, value)
	}
	return kind, nil
}

// Valid reports whether k is one of the known service kinds.
func (k ServiceKind) Valid() bool {
	switch k {
	case Milk, Water, HouseCleaning, Gardener:
		return true
	default:
		return false
	}
}

// Unit returns the unit quantities of this kind are measured in.
func (k ServiceKind) Unit() string {
	switch k {
	case Milk:
		return "kg"
	case Water:
		return "bottles"
	default:
		return "visits"
	}
}

// Label returns a human readable name.
func (k ServiceKind) Label() string {
	switch k {
	case HouseCleaning:
		return "House cleaning"
	case Milk:
		return "Milk"
	case Water:
		return "Water"
	case Gardener:
		return "Gardener"
	default:
		return string(k)
	}
}
