package domain

import (
	"errors"
	"testing"
)

func TestParseDispatchStatusFromString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  DispatchStatus
	}{
		{"sent", StatusSent},
		{" FAILED ", StatusFailed},
		{"Processing", StatusProcessing},
	}

	for _, tc := range cases {
		got, err := ParseDispatchStatusFromString(tc.input)
		if err != nil {
			t.Fatalf("ParseDispatchStatusFromString(%q) error = %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDispatchStatusFromString(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}

	if _, err := ParseDispatchStatusFromString("queued"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseDispatchStatusFromString(queued) error = %v, want ErrValidation", err)
	}
}

func TestDispatchStatusIsTerminal(t *testing.T) {
	t.Parallel()

	if StatusProcessing.IsTerminal() {
		t.Fatal("PROCESSING should not be terminal")
	}
	if !StatusSent.IsTerminal() {
		t.Fatal("SENT should be terminal")
	}
	if !StatusFailed.IsTerminal() {
		t.Fatal("FAILED should be terminal")
	}
}

func TestMissingColumnsError(t *testing.T) {
	t.Parallel()

	err := &MissingColumnsError{Missing: []string{"Email"}}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("MissingColumnsError should unwrap to ErrValidation")
	}
	if got, want := err.Error(), "missing required columns: Email"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
