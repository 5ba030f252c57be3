package ui

import (
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits, up to MaxLength of them.
type NumericalEntry struct {
	widget.Entry

	// MaxLength caps the number of digits typed; 0 means unlimited.
	MaxLength int
}

// NewNumericalEntry creates a new instance of NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// NewLimitedNumericalEntry creates a digit-only entry accepting at most maxLength digits.
func NewLimitedNumericalEntry(maxLength int) *NumericalEntry {
	entry := NewNumericalEntry()
	entry.MaxLength = maxLength
	return entry
}

// TypedRune filters keystrokes to digits. Pasted text bypasses it; the filter engine
// treats non-numeric criteria as non-matching anyway.
func (e *NumericalEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	if e.MaxLength > 0 && len([]rune(e.Text)) >= e.MaxLength && e.SelectedText() == "" {
		return
	}
	e.Entry.TypedRune(r)
}

// Keyboard shows a numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
