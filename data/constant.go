package data

const (
	DatePattern            = "2006-01-02"
	DatePatternCompact     = "20060102"
	DateTimePattern        = "2006-01-02 15:04:05"
	DateTimePatternCompact = "20060102150405"

	RunModeDev     = "dev"
	RunModeTest    = "test"
	RunModeRelease = "release"

	BankCodeFileName    = "bank_code.csv"
	BeneficiaryFileName = "beneficiary.bf"
)
