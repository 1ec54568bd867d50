package perm

import (
	"errors"
	"testing"
)

func TestCheckPassphrase_ExactMatch(t *testing.T) {
	if err := CheckPassphrase("0000", "0000"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	for _, supplied := range []string{"", "000", "0000 ", " 0000", "00000"} {
		if err := CheckPassphrase("0000", supplied); !errors.Is(err, ErrWrongPassphrase) {
			t.Fatalf("supplied %q: expected ErrWrongPassphrase, got %v", supplied, err)
		}
	}
}

func TestValidatePassphraseChange(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		confirm string
		want    error
	}{
		{name: "ok", current: "0000", next: "abcd", confirm: "abcd", want: nil},
		{name: "wrong current", current: "1111", next: "abcd", confirm: "abcd", want: ErrWrongPassphrase},
		{name: "mismatch", current: "0000", next: "abcd", confirm: "abce", want: ErrPassphraseMismatch},
		{name: "too short", current: "0000", next: "abc", confirm: "abc", want: ErrPassphraseTooShort},
		{name: "wrong current wins over short", current: "x", next: "a", confirm: "b", want: ErrWrongPassphrase},
		{name: "multibyte", current: "0000", next: "ぱすわど", confirm: "ぱすわど", want: nil},
		{name: "astral counts two units", current: "0000", next: "😀😀", confirm: "😀😀", want: nil},
		{name: "single astral too short", current: "0000", next: "😀", confirm: "😀", want: ErrPassphraseTooShort},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassphraseChange("0000", tt.current, tt.next, tt.confirm)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
