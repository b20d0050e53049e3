// Package rib computes and verifies the BCRG clé RIB of Guinean bank
// account identifiers and assembles RIB and IBAN strings from their parts.
//
// The RIB is bank code (3) + branch code (3) + account number (10) + check
// digits (2). The check digits are 97 minus the remainder of
// bank+branch+account+"00" divided by 97.
//
// Every function is pure and safe for concurrent use.
package rib

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	BankCodeLength      = 3
	BranchCodeLength    = 3
	AccountNumberLength = 10
	CheckDigitsLength   = 2
	RibLength           = BankCodeLength + BranchCodeLength + AccountNumberLength + CheckDigitsLength

	// DefaultIbanPrefix is the country code and control digits put in front
	// of every RIB. The control digits are a fixed literal and are never
	// recomputed from the RIB.
	DefaultIbanPrefix = "GN82"
)

// Identifier is a normalized national account identifier.
type Identifier struct {
	BankCode      string
	BranchCode    string
	AccountNumber string
	CheckDigits   string
}

func (id Identifier) RIB() string {
	return AssembleRib(id)
}

func (id Identifier) IBAN(prefix string) string {
	return AssembleIban(id, prefix)
}

func (id Identifier) String() string {
	return Format(id)
}

// ComputeCheckDigits returns the two digit clé for the given triple.
//
// Bank and branch codes are left padded with '0' to 3 characters and then
// cut to their first 3 characters. The account number is left padded to 10
// characters and only its trailing 10 characters are kept.
func ComputeCheckDigits(bankCode, branchCode, accountNumber string) (string, error) {
	base := padCode(bankCode) + padCode(branchCode) + padAccount(accountNumber) + "00"
	var (
		remainder int
		err       error
	)
	if remainder, err = mod97(base); err != nil {
		return "", err
	}
	// a zero remainder gives 97, which stays as is
	return fmt.Sprintf("%02d", 97-remainder), nil
}

// ValidateRib checks the shape of each part and that declaredCheckDigits
// matches the computed clé. Parts are only normalized for whitespace and
// case; nothing is padded, so a two digit bank code is rejected.
func ValidateRib(bankCode, branchCode, accountNumber, declaredCheckDigits string) (Identifier, error) {
	id := Identifier{
		BankCode:      normalize(bankCode),
		BranchCode:    normalize(branchCode),
		AccountNumber: normalize(accountNumber),
		CheckDigits:   normalize(declaredCheckDigits),
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{FieldBankCode, id.BankCode},
		{FieldBranchCode, id.BranchCode},
		{FieldAccountNumber, id.AccountNumber},
		{FieldCheckDigits, id.CheckDigits},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Identifier{}, &Error{Kind: KindMissingField, Fields: missing}
	}

	if !isDigits(id.BankCode, BankCodeLength) {
		return Identifier{}, fieldError(KindInvalidBankCode, FieldBankCode)
	}
	if !isDigits(id.BranchCode, BranchCodeLength) {
		return Identifier{}, fieldError(KindInvalidBranchCode, FieldBranchCode)
	}
	if !isDigits(id.AccountNumber, AccountNumberLength) {
		return Identifier{}, fieldError(KindInvalidAccountNumber, FieldAccountNumber)
	}
	if !isDigits(id.CheckDigits, CheckDigitsLength) {
		return Identifier{}, fieldError(KindInvalidCheckDigitFormat, FieldCheckDigits)
	}

	var (
		expected string
		err      error
	)
	if expected, err = ComputeCheckDigits(id.BankCode, id.BranchCode, id.AccountNumber); err != nil {
		return Identifier{}, err
	}
	if expected != id.CheckDigits {
		return Identifier{}, &Error{
			Kind:     KindCheckDigitMismatch,
			Fields:   []string{FieldCheckDigits},
			Expected: expected,
			Declared: id.CheckDigits,
		}
	}
	return id, nil
}

// Complete pads the three parts the way ComputeCheckDigits does and returns
// the identifier carrying the computed clé.
func Complete(bankCode, branchCode, accountNumber string) (Identifier, error) {
	bankCode, branchCode, accountNumber = normalize(bankCode), normalize(branchCode), normalize(accountNumber)

	var missing []string
	if bankCode == "" {
		missing = append(missing, FieldBankCode)
	}
	if branchCode == "" {
		missing = append(missing, FieldBranchCode)
	}
	if accountNumber == "" {
		missing = append(missing, FieldAccountNumber)
	}
	if len(missing) > 0 {
		return Identifier{}, &Error{Kind: KindMissingField, Fields: missing}
	}

	id := Identifier{
		BankCode:      padCode(bankCode),
		BranchCode:    padCode(branchCode),
		AccountNumber: padAccount(accountNumber),
	}
	if !isDigits(id.BankCode, BankCodeLength) {
		return Identifier{}, fieldError(KindInvalidBankCode, FieldBankCode)
	}
	if !isDigits(id.BranchCode, BranchCodeLength) {
		return Identifier{}, fieldError(KindInvalidBranchCode, FieldBranchCode)
	}
	if !isDigits(id.AccountNumber, AccountNumberLength) {
		return Identifier{}, fieldError(KindInvalidAccountNumber, FieldAccountNumber)
	}

	var err error
	if id.CheckDigits, err = ComputeCheckDigits(id.BankCode, id.BranchCode, id.AccountNumber); err != nil {
		return Identifier{}, err
	}
	return id, nil
}

// Parse splits a pasted RIB (18 digits) or IBAN (4 character prefix + 18
// digits) into its parts and validates them. Spaces are ignored. The IBAN
// prefix is not checked.
func Parse(value string) (Identifier, error) {
	value = normalize(value)
	if value == "" {
		return Identifier{}, &Error{Kind: KindMissingField, Fields: []string{FieldRib}}
	}
	if len(value) == len(DefaultIbanPrefix)+RibLength && isLetter(value[0]) && isLetter(value[1]) {
		value = value[len(DefaultIbanPrefix):]
	}
	if len(value) != RibLength {
		return Identifier{}, fieldError(KindInvalidInput, FieldRib)
	}
	return ValidateRib(
		value[0:3],
		value[3:6],
		value[6:16],
		value[16:18],
	)
}

// AssembleRib concatenates the four parts of id.
func AssembleRib(id Identifier) string {
	return id.BankCode + id.BranchCode + id.AccountNumber + id.CheckDigits
}

// AssembleIban puts prefix in front of the RIB. An empty prefix means
// DefaultIbanPrefix.
func AssembleIban(id Identifier, prefix string) string {
	if prefix == "" {
		prefix = DefaultIbanPrefix
	}
	return prefix + AssembleRib(id)
}

// Format returns the RIB with its parts separated by spaces, as printed on
// statements.
func Format(id Identifier) string {
	return strings.Join([]string{id.BankCode, id.BranchCode, id.AccountNumber, id.CheckDigits}, " ")
}

func mod97(base string) (int, error) {
	remainder := 0
	for i := 0; i < len(base); i++ {
		c := base[i]
		if c < '0' || c > '9' {
			return 0, &Error{Kind: KindInvalidInput}
		}
		remainder = (remainder*10 + int(c-'0')) % 97
	}
	return remainder, nil
}

func padCode(code string) string {
	return padLeft(code, BankCodeLength)[:BankCodeLength]
}

func padAccount(accountNumber string) string {
	padded := padLeft(accountNumber, AccountNumberLength)
	return padded[len(padded)-AccountNumberLength:]
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

func normalize(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

func isDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
