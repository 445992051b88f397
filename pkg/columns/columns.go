// Package columns holds the name heuristics used to find the price target,
// the administrative columns of a survey export and the destination columns
// of a sheet. Every fuzzy match in the module goes through here.
package columns

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMissingTargetColumn is returned when no price column can be resolved.
var ErrMissingTargetColumn = errors.New("missing target column")

// Target is the canonical name of the training target.
const Target = "price"

// Field names attached to every predicted record.
const (
	PredictedPrice = "Predicted Price"
	PredictedFlag  = "IsPredicted"
	Timestamp      = "Timestamp"
)

// AlternateTargets are survey headers known to hold the selling price.
var AlternateTargets = []string{
	"What was the selling or buying price (LKR) ?",
}

// Normalize lower-cases a name, trims it and collapses inner whitespace.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ResolveTarget picks the price column: an exact "price", then a known
// alternate, then the first column whose name contains "price".
func ResolveTarget(cols []string) (string, error) {
	for _, c := range cols {
		if c == Target {
			return c, nil
		}
	}
	for _, alt := range AlternateTargets {
		for _, c := range cols {
			if c == alt {
				return c, nil
			}
		}
	}
	for _, c := range cols {
		if IsPriceLike(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: none of %d columns looks like %q", ErrMissingTargetColumn, len(cols), Target)
}

// IsPriceLike reports whether name mentions a price.
func IsPriceLike(name string) bool {
	return strings.Contains(Normalize(name), "price")
}

// IsTimeLike reports whether name looks like a timestamp or date column:
// it contains "time", or "date" as a word of its own ("Date of sale",
// "purchase_date" but not "Updated mileage").
func IsTimeLike(name string) bool {
	n := Normalize(name)
	if strings.Contains(n, "time") {
		return true
	}
	words := strings.FieldsFunc(n, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if w == "date" || w == "dates" {
			return true
		}
	}
	return false
}

// IsPredictedFlag reports whether name is the "already predicted" marker.
func IsPredictedFlag(name string) bool {
	return strings.ReplaceAll(Normalize(name), " ", "") == strings.ToLower(PredictedFlag)
}

// IsAdministrative reports whether a column is excluded from feature rows.
func IsAdministrative(name string) bool {
	return IsPriceLike(name) || IsTimeLike(name) || IsPredictedFlag(name)
}

// FeatureColumns filters out administrative columns, keeping order.
func FeatureColumns(cols []string) []string {
	var out []string
	for _, c := range cols {
		if !IsAdministrative(c) {
			out = append(out, c)
		}
	}
	return out
}

// MatchHeader returns the field a destination header should take its value
// from: an exact normalized name match, else the predicted price for a
// price-like header, else the timestamp for a time-like header.
// ok is false when the header should stay blank.
func MatchHeader(header string, fields []string) (field string, ok bool) {
	h := Normalize(header)
	for _, f := range fields {
		if Normalize(f) == h {
			return f, true
		}
	}
	var fallback string
	switch {
	case IsPriceLike(h):
		fallback = PredictedPrice
	case IsTimeLike(h):
		fallback = Timestamp
	default:
		return "", false
	}
	for _, f := range fields {
		if f == fallback {
			return f, true
		}
	}
	return "", false
}
