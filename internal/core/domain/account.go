package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// codeLeadingDigits maps the leading digit of an account code to the type it
// must declare: 1=Asset, 2=Liability, 3=Equity, 4=Revenue, 5=Expense.
var codeLeadingDigits = map[byte]AccountType{
	'1': Asset,
	'2': Liability,
	'3': Equity,
	'4': Revenue,
	'5': Expense,
}

// TypeForCode returns the account type implied by the code's leading digit.
func TypeForCode(code string) (AccountType, bool) {
	if code == "" {
		return "", false
	}
	t, ok := codeLeadingDigits[code[0]]
	return t, ok
}

// IsDebitNormal reports whether the account type increases with debits.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account represents an entry in the chart of accounts.
// Type and code are immutable once the account is referenced by a journal
// line; the balance sign rule depends on the type.
type Account struct {
	AccountID       string      `json:"accountID"`
	Code            string      `json:"code"` // Unique; leading digit encodes the type
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	ParentAccountID string      `json:"parentAccountID"` // Nullable, for hierarchical rollups
	Description     string      `json:"description"`
	IsActive        bool        `json:"isActive"`
	AuditFields
}
