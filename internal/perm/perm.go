package perm

import (
	"errors"
	"unicode/utf16"
)

// MinPassphraseLen is the shortest passphrase ChangePassphrase accepts.
const MinPassphraseLen = 4

var (
	ErrWrongPassphrase    = errors.New("wrong passphrase")
	ErrPassphraseMismatch = errors.New("new passphrase and confirmation do not match")
	ErrPassphraseTooShort = errors.New("passphrase must be at least 4 characters")
)

// CheckPassphrase gates a mutating action.
//
// The passphrase is stored and compared in plaintext. It is a deterrent against accidental
// edits, not an authentication boundary: anyone with access to the store can read it.
func CheckPassphrase(stored, supplied string) error {
	if supplied != stored {
		return ErrWrongPassphrase
	}
	return nil
}

// ValidatePassphraseChange checks, in order: the current passphrase, the confirmation repeat
// and the minimum length. The first failing rule is returned.
//
// Length is counted in UTF-16 code units, so a character outside the BMP counts as two.
func ValidatePassphraseChange(stored, current, next, confirm string) error {
	if err := CheckPassphrase(stored, current); err != nil {
		return err
	}
	if next != confirm {
		return ErrPassphraseMismatch
	}
	if len(utf16.Encode([]rune(next))) < MinPassphraseLen {
		return ErrPassphraseTooShort
	}
	return nil
}
