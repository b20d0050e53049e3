package mod

type RibRequest struct {
	BankCode      string `json:"bank_code"`
	BranchCode    string `json:"branch_code"`
	AccountNumber string `json:"account_number"`
	CheckDigits   string `json:"check_digits"`
}

type RibData struct {
	BankCode      string `json:"bank_code"`
	BranchCode    string `json:"branch_code"`
	AccountNumber string `json:"account_number"`
	CheckDigits   string `json:"check_digits"`
	Rib           string `json:"rib"`
	Iban          string `json:"iban"`
	Formatted     string `json:"formatted"`
	BankName      string `json:"bank_name,omitempty"` //银行名称
}

type RibError struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Fields   []string `json:"fields,omitempty"`
	Expected string   `json:"expected,omitempty"`
	Declared string   `json:"declared,omitempty"`
}
