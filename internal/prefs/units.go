// Package prefs holds user preference stores.
package prefs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VolumeUnit is a unit for volume input and display.
type VolumeUnit string

// Supported units.
const (
	Milliliters VolumeUnit = "milliliters"
	Ounces      VolumeUnit = "ounces"
)

// millilitersPerOunce is one US fluid ounce.
const millilitersPerOunce = 29.5735

// VolumeUnits lists every supported unit in display order.
var VolumeUnits = []VolumeUnit{Milliliters, Ounces}

// ParseVolumeUnit returns the unit named s.
func ParseVolumeUnit(s string) (VolumeUnit, error) {
	u := VolumeUnit(s)
	if !u.Valid() {
		return "", fmt.Errorf("unknown volume unit %q", s)
	}
	return u, nil
}

// Valid reports whether u is a supported unit.
func (u VolumeUnit) Valid() bool {
	return u == Milliliters || u == Ounces
}

// Title is the full name shown in a unit picker.
func (u VolumeUnit) Title() string {
	switch u {
	case Ounces:
		return "US Ounces (oz)"
	default:
		return "Milliliters (ml)"
	}
}

// Label is the unit name without abbreviation.
func (u VolumeUnit) Label() string {
	switch u {
	case Ounces:
		return "US Ounces"
	default:
		return "Milliliters"
	}
}

// ShortLabel is the unit suffix.
func (u VolumeUnit) ShortLabel() string {
	switch u {
	case Ounces:
		return "oz"
	default:
		return "ml"
	}
}

// Format renders ml in u with its suffix, e.g. "250 ml" or "8.5 oz".
func (u VolumeUnit) Format(ml int) string {
	return u.EditableText(ml) + " " + u.ShortLabel()
}

// EditableText renders ml in u without suffix. Ounces keep one decimal place,
// dropped when zero.
func (u VolumeUnit) EditableText(ml int) string {
	if u != Ounces {
		return strconv.Itoa(ml)
	}
	tenths := int(math.Round(float64(ml) / millilitersPerOunce * 10))
	if tenths%10 == 0 {
		return strconv.Itoa(tenths / 10)
	}
	return strconv.FormatFloat(float64(tenths)/10, 'f', 1, 64)
}

// ParseAmount converts user input in u to milliliters. It accepts a comma as
// decimal separator for ounces. Empty, non-numeric and non-positive input is
// rejected.
func (u VolumeUnit) ParseAmount(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	if u != Ounces {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return 0, false
		}
		return v, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return int(math.Round(v * millilitersPerOunce)), true
}
