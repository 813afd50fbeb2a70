package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal is the db representation of a journal entry header.
type Journal struct {
	JournalID          string    `db:"journal_id"`
	JournalRef         string    `db:"journal_ref"`
	JournalDate        time.Time `db:"journal_date"`
	Description        string    `db:"description"`
	Reference          string    `db:"reference"`
	Status             string    `db:"status"`
	OriginalJournalID  *string   `db:"original_journal_id"`
	ReversingJournalID *string   `db:"reversing_journal_id"`
	AuditFields
}

// JournalLine is the db representation of a single debit/credit line.
type JournalLine struct {
	LineID       string          `db:"line_id"`
	JournalID    string          `db:"journal_id"`
	AccountID    string          `db:"account_id"`
	Debit        decimal.Decimal `db:"debit"`
	Credit       decimal.Decimal `db:"credit"`
	CurrencyCode string          `db:"currency_code"`
	Description  string          `db:"description"`
	AuditFields
}

// AccountBalance is the materialized (account, currency) balance row.
type AccountBalance struct {
	AccountID    string          `db:"account_id"`
	CurrencyCode string          `db:"currency_code"`
	Balance      decimal.Decimal `db:"balance"`
	AsOf         time.Time       `db:"as_of"`
}
