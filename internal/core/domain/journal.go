package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// Journal is the header of a single, balanced accounting event.
// Once accepted it is append-only: lines are never edited in place.
// Corrections go through a compensating journal, or through the narrow
// grace-period delete path that removes the whole entry atomically.
type Journal struct {
	JournalID   string        `json:"journalID"`
	JournalRef  string        `json:"journalRef"` // Logical posting journal, e.g. "FEES"
	JournalDate time.Time     `json:"journalDate"`
	Description string        `json:"description"`
	Reference   string        `json:"reference"` // External idempotency/lookup key
	Status      JournalStatus `json:"status"`
	// Reversal linkage: a reversing journal points at its original, and a
	// reversed original points at the journal that reversed it.
	OriginalJournalID  *string `json:"originalJournalID,omitempty"`
	ReversingJournalID *string `json:"reversingJournalID,omitempty"`
	AuditFields
	Lines []JournalLine `json:"lines,omitempty"`
}

// JournalLine is a single debit or credit against one account.
// Exactly one of Debit/Credit is non-zero, both are >= 0.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	JournalID    string          `json:"journalID"`
	AccountID    string          `json:"accountID"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	CurrencyCode string          `json:"currencyCode"`
	Description  string          `json:"description"`
	AuditFields
}

// IsDebit reports whether the line's non-zero side is the debit side.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the magnitude of the line regardless of side.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// AccountBalance is the materialized running balance for one account in one
// currency. It is a pure derivation of journal lines and may be truncated
// and rebuilt at any time by the repair utility.
type AccountBalance struct {
	AccountID    string          `json:"accountID"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	AsOf         time.Time       `json:"asOf"`
}

// BalanceDelta is a signed contribution to one (account, currency) balance.
// Journal deletion returns the inverse deltas for the caller to apply.
type BalanceDelta struct {
	AccountID    string          `json:"accountID"`
	CurrencyCode string          `json:"currencyCode"`
	Delta        decimal.Decimal `json:"delta"`
}
