package domain

import "testing"

func TestNegotiation_OpeningCounter(t *testing.T) {
	n := &Negotiation{}

	if got := n.CounterAmount(100); got != 70 {
		t.Errorf("Expected opening counter 70 for 100, got %v", got)
	}
}

func TestNegotiation_MidpointCounter(t *testing.T) {
	n := &Negotiation{}
	n.RecordCounterpartOffer(70)

	if got := n.CounterAmount(90); got != 80 {
		t.Errorf("Expected midpoint counter 80 for (70, 90), got %v", got)
	}
}

func TestNegotiation_RoundsToWholeUnit(t *testing.T) {
	n := &Negotiation{}

	// 0.7 * 99 = 69.3 -> 69
	if got := n.CounterAmount(99); got != 69 {
		t.Errorf("Expected 69, got %v", got)
	}

	n.RecordCounterpartOffer(70)
	// (70 + 81) / 2 = 75.5 -> 76
	if got := n.CounterAmount(81); got != 76 {
		t.Errorf("Expected 76, got %v", got)
	}
}

func TestNegotiation_ConvergesTowardAgreement(t *testing.T) {
	n := &Negotiation{}

	first := n.CounterAmount(100)
	n.RecordCounterpartOffer(first)

	second := n.CounterAmount(90)
	if second <= first || second >= 90 {
		t.Errorf("Expected counter between %v and 90, got %v", first, second)
	}
}

func TestParseAmount_Valid(t *testing.T) {
	cases := map[string]float64{
		"100":    100,
		" 42.5 ": 42.5,
		"0.01":   0.01,
	}
	for input, want := range cases {
		got, err := ParseAmount(input)
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	// Malformed input must be rejected before it can corrupt the
	// negotiation state
	cases := []string{"", "   ", "abc", "12abc", "-5", "0", "NaN", "+Inf", "-Inf"}
	for _, input := range cases {
		if _, err := ParseAmount(input); err != ErrInvalidAmount {
			t.Errorf("ParseAmount(%q) = %v, want ErrInvalidAmount", input, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(70); got != "70" {
		t.Errorf("Expected \"70\", got %q", got)
	}
	if got := FormatAmount(42.5); got != "42.5" {
		t.Errorf("Expected \"42.5\", got %q", got)
	}
}

func TestNewCounterDialog_PrefillsDraft(t *testing.T) {
	d := NewCounterDialog(70)

	if !d.IsCounter() {
		t.Error("Expected counter mode")
	}
	if d.Draft != "70" {
		t.Errorf("Expected draft pre-filled with \"70\", got %q", d.Draft)
	}
	if d.Cap != 70 {
		t.Errorf("Expected advisory cap 70, got %v", d.Cap)
	}
}

func TestNewInitialDialog_Empty(t *testing.T) {
	d := NewInitialDialog()

	if d.IsCounter() {
		t.Error("Expected initial mode")
	}
	if d.Draft != "" || d.Cap != 0 {
		t.Error("Expected empty draft and no cap")
	}
}
