package domain

// DialogMode represents how the amount-entry dialog was opened
type DialogMode string

const (
	DialogInitial DialogMode = "initial"
	DialogCounter DialogMode = "counter"
)

// OfferDialog represents the transient amount-entry dialog state (value
// object). For a counter dialog the draft is pre-filled with the original
// amount and Cap carries it as a suggested upper bound; the cap is a
// display hint only and is never enforced on submit.
type OfferDialog struct {
	Mode  DialogMode
	Draft string
	Cap   float64
}

// NewInitialDialog opens an empty dialog with no cap
func NewInitialDialog() *OfferDialog {
	return &OfferDialog{Mode: DialogInitial}
}

// NewCounterDialog opens a dialog pre-filled from the offer being countered
func NewCounterDialog(originalAmount float64) *OfferDialog {
	return &OfferDialog{
		Mode:  DialogCounter,
		Draft: FormatAmount(originalAmount),
		Cap:   originalAmount,
	}
}

// IsCounter checks if the dialog was opened from a Counter action
func (d *OfferDialog) IsCounter() bool {
	return d.Mode == DialogCounter
}
