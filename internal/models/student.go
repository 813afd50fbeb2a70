package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is the db representation of a sub-ledger party.
type Student struct {
	StudentID string `db:"student_id"`
	FullName  string `db:"full_name"`
	IsActive  bool   `db:"is_active"`
	AuditFields
}

// StudentTransaction is the db representation of one sub-ledger movement.
// journal_id is NOT NULL by schema; the posting orchestrator is the only
// writer and always records it alongside the journal entry.
type StudentTransaction struct {
	TransactionID         string          `db:"transaction_id"`
	StudentID             string          `db:"student_id"`
	TxnType               string          `db:"txn_type"`
	Amount                decimal.Decimal `db:"amount"`
	Description           string          `db:"description"`
	Term                  string          `db:"term"`
	AcademicYear          string          `db:"academic_year"`
	JournalID             string          `db:"journal_id"`
	ReversesTransactionID *string         `db:"reverses_transaction_id"`
	AuditFields
}

// StudentBalance is the materialized per-student balance row.
type StudentBalance struct {
	StudentID   string          `db:"student_id"`
	Balance     decimal.Decimal `db:"balance"`
	LastUpdated time.Time       `db:"last_updated"`
}
