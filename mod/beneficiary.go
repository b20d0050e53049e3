package mod

import (
	"fmt"
	"github.com/pkg/errors"
	"time"
)

type Beneficiary struct {
	Id            string            `json:"id"`
	Name          string            `json:"name"`
	Phone         string            `json:"phone"`
	BankCode      string            `json:"bank_code"`
	BranchCode    string            `json:"branch_code"`
	AccountNumber string            `json:"account_number"`
	CheckDigits   string            `json:"check_digits"`
	Iban          string            `json:"iban"`
	Status        BeneficiaryStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type BeneficiaryRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Occasional bool   `json:"occasional"`
	RibRequest
}

type BeneficiaryStatus uint8

const (
	BeneficiaryStatusCreated BeneficiaryStatus = iota + 1
	//OTP confirmed by the customer
	BeneficiaryStatusVerified
	//accepted by the back office
	BeneficiaryStatusValidated
	//usable for transfers
	BeneficiaryStatusAvailable
	BeneficiaryStatusSuspended
	//one-off transfer, never goes through validation
	BeneficiaryStatusOccasional
)

var beneficiaryStatusNames = map[BeneficiaryStatus]string{
	BeneficiaryStatusCreated:    "created",
	BeneficiaryStatusVerified:   "verified",
	BeneficiaryStatusValidated:  "validated",
	BeneficiaryStatusAvailable:  "available",
	BeneficiaryStatusSuspended:  "suspended",
	BeneficiaryStatusOccasional: "occasional",
}

var beneficiaryTransitions = map[BeneficiaryStatus][]BeneficiaryStatus{
	BeneficiaryStatusCreated:    {BeneficiaryStatusVerified, BeneficiaryStatusSuspended},
	BeneficiaryStatusVerified:   {BeneficiaryStatusValidated, BeneficiaryStatusSuspended},
	BeneficiaryStatusValidated:  {BeneficiaryStatusAvailable, BeneficiaryStatusSuspended},
	BeneficiaryStatusAvailable:  {BeneficiaryStatusSuspended},
	BeneficiaryStatusSuspended:  {BeneficiaryStatusAvailable},
	BeneficiaryStatusOccasional: {BeneficiaryStatusSuspended},
}

func ParseBeneficiaryStatus(name string) (BeneficiaryStatus, error) {
	for status, n := range beneficiaryStatusNames {
		if n == name {
			return status, nil
		}
	}
	return 0, errors.Errorf("unknown beneficiary status %q", name)
}

func (s BeneficiaryStatus) String() string {
	if name, ok := beneficiaryStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("BeneficiaryStatus(%d)", uint8(s))
}

func (s BeneficiaryStatus) Valid() bool {
	_, ok := beneficiaryStatusNames[s]
	return ok
}

// CanTransition reports whether a beneficiary in status s may move to next.
func (s BeneficiaryStatus) CanTransition(next BeneficiaryStatus) bool {
	for _, allowed := range beneficiaryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BeneficiaryStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Errorf("invalid beneficiary status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *BeneficiaryStatus) UnmarshalText(text []byte) error {
	status, err := ParseBeneficiaryStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
