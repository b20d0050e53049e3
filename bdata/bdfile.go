package bdata

import (
	"encoding/csv"
	"git.thinkinpower.net/ribdb/mod"
	"github.com/pkg/errors"
	"io"
	"os"
	"path/filepath"
	"time"
)

var beneficiaryHeader = []string{"id", "name", "phone", "bank_code", "branch_code", "account_number", "check_digits", "iban", "status", "created_at", "updated_at"}

func read(path string) ([]mod.Beneficiary, error) {
	var (
		f   *os.File
		err error
	)
	if f, err = os.Open(path); err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(beneficiaryHeader)
	result := make([]mod.Beneficiary, 0, 256)
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lineNum++
		//skip header
		if lineNum == 1 && record[0] == beneficiaryHeader[0] {
			continue
		}
		var b mod.Beneficiary
		if b, err = parse(record); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		result = append(result, b)
	}
	return result, nil
}

func parse(record []string) (mod.Beneficiary, error) {
	b := mod.Beneficiary{
		Id:            record[0],
		Name:          record[1],
		Phone:         record[2],
		BankCode:      record[3],
		BranchCode:    record[4],
		AccountNumber: record[5],
		CheckDigits:   record[6],
		Iban:          record[7],
	}
	var err error
	if b.Status, err = mod.ParseBeneficiaryStatus(record[8]); err != nil {
		return mod.Beneficiary{}, err
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, record[9]); err != nil {
		return mod.Beneficiary{}, err
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339Nano, record[10]); err != nil {
		return mod.Beneficiary{}, err
	}
	return b, nil
}

func format(b mod.Beneficiary) []string {
	return []string{
		b.Id,
		b.Name,
		b.Phone,
		b.BankCode,
		b.BranchCode,
		b.AccountNumber,
		b.CheckDigits,
		b.Iban,
		b.Status.String(),
		b.CreatedAt.Format(time.RFC3339Nano),
		b.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// write2File appends b to path, writing the header first when the file is
// new.
func write2File(path string, b mod.Beneficiary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	var (
		f   *os.File
		err error
	)
	if f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if newFile {
		if err = writer.Write(beneficiaryHeader); err != nil {
			return err
		}
	}
	if err = writer.Write(format(b)); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
