package rib

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// Kind discriminates validation failures so callers can pick a field
// specific message without matching on text.
type Kind string

const (
	KindMissingField            Kind = "missing_field"
	KindInvalidBankCode         Kind = "invalid_bank_code"
	KindInvalidBranchCode       Kind = "invalid_branch_code"
	KindInvalidAccountNumber    Kind = "invalid_account_number"
	KindInvalidCheckDigitFormat Kind = "invalid_check_digit_format"
	KindInvalidInput            Kind = "invalid_input"
	KindCheckDigitMismatch      Kind = "check_digit_mismatch"
)

const (
	FieldBankCode      = "bank_code"
	FieldBranchCode    = "branch_code"
	FieldAccountNumber = "account_number"
	FieldCheckDigits   = "check_digits"
	FieldRib           = "rib"
)

type Error struct {
	Kind     Kind
	Fields   []string
	Expected string
	Declared string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("Champs obligatoires manquants : %s", strings.Join(e.Fields, ", "))
	case KindInvalidBankCode:
		return "Code banque invalide : 3 chiffres attendus"
	case KindInvalidBranchCode:
		return "Code agence invalide : 3 chiffres attendus"
	case KindInvalidAccountNumber:
		return "Numéro de compte invalide : 10 chiffres attendus"
	case KindInvalidCheckDigitFormat:
		return "Clé RIB invalide : 2 chiffres attendus"
	case KindInvalidInput:
		if len(e.Fields) == 1 && e.Fields[0] == FieldRib {
			return fmt.Sprintf("RIB invalide : %d chiffres attendus", RibLength)
		}
		return "Caractère non numérique dans l'identifiant"
	case KindCheckDigitMismatch:
		return fmt.Sprintf("Clé RIB invalide. Clé attendue : %s, clé saisie : %s", e.Expected, e.Declared)
	}
	return string(e.Kind)
}

// IsKind reports whether the cause of err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := errors.Cause(err).(*Error)
	return ok && e.Kind == kind
}

func fieldError(kind Kind, field string) *Error {
	return &Error{Kind: kind, Fields: []string{field}}
}
