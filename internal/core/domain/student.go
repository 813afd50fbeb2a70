package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentTxnType indicates whether a student sub-ledger transaction charges
// the student (DEBIT) or reduces what they owe (CREDIT).
type StudentTxnType string

const (
	StudentDebit  StudentTxnType = "DEBIT"
	StudentCredit StudentTxnType = "CREDIT"
)

// Opposite returns the reversing transaction type.
func (t StudentTxnType) Opposite() StudentTxnType {
	if t == StudentDebit {
		return StudentCredit
	}
	return StudentDebit
}

// Student is the sub-ledger's party. Account screens own the rest of the
// student record; the ledger only needs identity and active state.
type Student struct {
	StudentID string `json:"studentID"`
	FullName  string `json:"fullName"`
	IsActive  bool   `json:"isActive"`
	AuditFields
}

// StudentTransaction is one movement on the student-scoped sub-ledger.
// JournalID is mandatory: every sub-ledger movement is produced in the same
// atomic unit as the journal entry that backs it, which is what keeps the
// two ledgers reconcilable.
type StudentTransaction struct {
	TransactionID string          `json:"transactionID"`
	StudentID     string          `json:"studentID"`
	TxnType       StudentTxnType  `json:"txnType"`
	Amount        decimal.Decimal `json:"amount"` // Always positive
	Description   string          `json:"description"`
	Term          string          `json:"term,omitempty"`
	AcademicYear  string          `json:"academicYear,omitempty"`
	JournalID     string          `json:"journalID"`
	// ReversesTransactionID links a compensating transaction to the one it
	// reverses.
	ReversesTransactionID *string `json:"reversesTransactionID,omitempty"`
	AuditFields
}

// StudentBalance is the materialized sub-ledger balance:
// sum(CREDIT) - sum(DEBIT). Negative means the student owes money.
type StudentBalance struct {
	StudentID   string          `json:"studentID"`
	Balance     decimal.Decimal `json:"balance"`
	LastUpdated time.Time       `json:"lastUpdated"`
}
