package bdata

import (
	"git.thinkinpower.net/ribdb/mod"
	"git.thinkinpower.net/ribdb/rib"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"strings"
	"time"
)

var (
	ErrNotFound           = errors.New("beneficiary not found")
	ErrDuplicate          = errors.New("beneficiary already exists")
	ErrTransition         = errors.New("beneficiary status change refused")
	ErrInvalidBeneficiary = errors.New("invalid beneficiary")
)

type BeneficiaryConfig struct {
	DataDir string
}

type BeneficiaryDatabase interface {
	Init(cfg BeneficiaryConfig) error
	Read(id string) (mod.Beneficiary, error)
	List() []mod.Beneficiary
	// Save refuses with ErrDuplicate a known id, or an IBAN already held by
	// a beneficiary that is not suspended.
	Save(b mod.Beneficiary) error
	Transition(id string, to mod.BeneficiaryStatus) (mod.Beneficiary, error)
}

// Registry validates beneficiaries against the RIB rules before they reach
// the database.
type Registry struct {
	db         BeneficiaryDatabase
	banks      *BankDirectory
	ibanPrefix string
	now        func() time.Time
}

func NewRegistry(db BeneficiaryDatabase, banks *BankDirectory, ibanPrefix string) *Registry {
	return &Registry{db: db, banks: banks, ibanPrefix: ibanPrefix, now: time.Now}
}

func (r *Registry) IbanPrefix() string {
	return r.ibanPrefix
}

func (r *Registry) Banks() *BankDirectory {
	return r.banks
}

// CreateBeneficiary re-validates the RIB and stores a new beneficiary in
// status created, or occasional for a one-off transfer. The returned error
// is a *rib.Error when the RIB is rejected.
func (r *Registry) CreateBeneficiary(req mod.BeneficiaryRequest) (mod.Beneficiary, error) {
	name, phone := strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone)
	if name == "" {
		return mod.Beneficiary{}, errors.Wrap(ErrInvalidBeneficiary, "name is required")
	}
	if phone == "" && !req.Occasional {
		return mod.Beneficiary{}, errors.Wrap(ErrInvalidBeneficiary, "phone is required")
	}

	var (
		id  rib.Identifier
		err error
	)
	if id, err = rib.ValidateRib(req.BankCode, req.BranchCode, req.AccountNumber, req.CheckDigits); err != nil {
		return mod.Beneficiary{}, err
	}
	iban := id.IBAN(r.ibanPrefix)

	status := mod.BeneficiaryStatusCreated
	if req.Occasional {
		status = mod.BeneficiaryStatusOccasional
	}
	now := r.now()
	b := mod.Beneficiary{
		Id:            uuid.NewString(),
		Name:          name,
		Phone:         phone,
		BankCode:      id.BankCode,
		BranchCode:    id.BranchCode,
		AccountNumber: id.AccountNumber,
		CheckDigits:   id.CheckDigits,
		Iban:          iban,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err = r.db.Save(b); err != nil {
		return mod.Beneficiary{}, err
	}
	return b, nil
}

func (r *Registry) Beneficiary(id string) (mod.Beneficiary, error) {
	return r.db.Read(id)
}

func (r *Registry) Beneficiaries() []mod.Beneficiary {
	return r.db.List()
}

func (r *Registry) Transition(id string, to mod.BeneficiaryStatus) (mod.Beneficiary, error) {
	return r.db.Transition(id, to)
}

// Describe builds the display form of a validated identifier.
func (r *Registry) Describe(id rib.Identifier) mod.RibData {
	result := mod.RibData{
		BankCode:      id.BankCode,
		BranchCode:    id.BranchCode,
		AccountNumber: id.AccountNumber,
		CheckDigits:   id.CheckDigits,
		Rib:           id.RIB(),
		Iban:          id.IBAN(r.ibanPrefix),
		Formatted:     id.String(),
	}
	if r.banks != nil {
		result.BankName, _ = r.banks.BankName(id.BankCode)
	}
	return result
}
