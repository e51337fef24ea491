package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount indicates an offer amount that is not a positive finite number
var ErrInvalidAmount = errors.New("invalid offer amount")

// openingConcession anchors the first counter-offer below the user's ask
const openingConcession = 0.7

// Negotiation tracks the counterpart's side of the haggling for one session.
// It holds only the last automated counter-offer; everything else lives in
// the message log.
type Negotiation struct {
	LastCounterpartAmount float64
	HasCounterpartOffer   bool
}

// CounterAmount computes the counterpart's next counter-offer for a
// submitted user amount: the midpoint between the last automated offer and
// the new user offer, or an opening concession when no counter-offer has
// been made yet. Rounded to the nearest whole currency unit.
func (n *Negotiation) CounterAmount(submitted float64) float64 {
	if n.HasCounterpartOffer {
		return math.Round((n.LastCounterpartAmount + submitted) / 2)
	}
	return math.Round(submitted * openingConcession)
}

// RecordCounterpartOffer updates the negotiation after a counter-offer is made
func (n *Negotiation) RecordCounterpartOffer(amount float64) {
	n.LastCounterpartAmount = amount
	n.HasCounterpartOffer = true
}

// ParseAmount parses user-entered offer text into an amount. Non-numeric,
// non-finite and non-positive input is rejected with ErrInvalidAmount
// before it can reach the negotiation state.
func ParseAmount(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount formats an amount for drafts and transcripts without
// trailing zeros
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
