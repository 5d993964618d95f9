package entity

import (
	"errors"
	"strings"
	"testing"
)

// TestValidate covers the input contract: required name, size caps, and
// EIN format.
func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{"valid minimal", Input{Name: "Acme LLC"}, nil},
		{"valid full", Input{
			Name:     "Acme LLC",
			Address:  "123 Main St, Ocala, FL",
			EIN:      "12-3456789",
			Officers: []string{"John Smith"},
		}, nil},
		{"ein without dash", Input{Name: "Acme LLC", EIN: "123456789"}, nil},
		{"empty name", Input{Name: ""}, ErrEmptyName},
		{"whitespace name", Input{Name: "   "}, ErrEmptyName},
		{"name too long", Input{Name: strings.Repeat("x", 201)}, ErrNameTooLong},
		{"address too long", Input{Name: "Acme", Address: strings.Repeat("x", 501)}, ErrAddressTooLong},
		{"too many officers", Input{Name: "Acme", Officers: make([]string, 21)}, ErrTooManyOfficers},
		{"short ein", Input{Name: "Acme", EIN: "12-345"}, ErrInvalidEIN},
		{"alpha ein", Input{Name: "Acme", EIN: "ab-cdefghi"}, ErrInvalidEIN},
	}

	for _, tc := range cases {
		err := tc.input.Validate()
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: Validate() = %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

// TestHasEIN verifies whitespace-only EINs count as absent.
func TestHasEIN(t *testing.T) {
	if (&Input{EIN: "  "}).HasEIN() {
		t.Error("whitespace EIN should count as absent")
	}
	if !(&Input{EIN: "12-3456789"}).HasEIN() {
		t.Error("valid EIN should count as present")
	}
}
