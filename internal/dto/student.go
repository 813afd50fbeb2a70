package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// CreateStudentRequest defines the payload to register a student with the
// sub-ledger.
type CreateStudentRequest struct {
	FullName string `json:"fullName" binding:"required"`
}

// StudentResponse defines the data returned for a student.
type StudentResponse struct {
	StudentID string `json:"studentID"`
	FullName  string `json:"fullName"`
	IsActive  bool   `json:"isActive"`
}

// StudentBalanceResponse is the materialized sub-ledger balance. Negative
// means the student owes money.
type StudentBalanceResponse struct {
	StudentID   string          `json:"studentID"`
	Balance     decimal.Decimal `json:"balance"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// StudentTransactionResponse defines the data returned for one sub-ledger
// movement.
type StudentTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	StudentID     string          `json:"studentID"`
	TxnType       string          `json:"txnType"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Term          string          `json:"term,omitempty"`
	AcademicYear  string          `json:"academicYear,omitempty"`
	JournalID     string          `json:"journalID"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListStudentTransactionsParams carries pagination parameters.
type ListStudentTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListStudentTransactionsResponse is one page of sub-ledger transactions.
type ListStudentTransactionsResponse struct {
	Transactions []StudentTransactionResponse `json:"transactions"`
	NextToken    *string                      `json:"nextToken,omitempty"`
}

// ToStudentResponse converts a domain student to its response DTO.
func ToStudentResponse(s *domain.Student) StudentResponse {
	return StudentResponse{
		StudentID: s.StudentID,
		FullName:  s.FullName,
		IsActive:  s.IsActive,
	}
}

// ToStudentBalanceResponse converts a domain balance to its response DTO.
func ToStudentBalanceResponse(b *domain.StudentBalance) StudentBalanceResponse {
	return StudentBalanceResponse{
		StudentID:   b.StudentID,
		Balance:     b.Balance,
		LastUpdated: b.LastUpdated,
	}
}

// ToStudentTransactionResponse converts a domain transaction to its response DTO.
func ToStudentTransactionResponse(t *domain.StudentTransaction) StudentTransactionResponse {
	return StudentTransactionResponse{
		TransactionID: t.TransactionID,
		StudentID:     t.StudentID,
		TxnType:       string(t.TxnType),
		Amount:        t.Amount,
		Description:   t.Description,
		Term:          t.Term,
		AcademicYear:  t.AcademicYear,
		JournalID:     t.JournalID,
		CreatedAt:     t.CreatedAt,
	}
}

// ToStudentTransactionResponses converts a slice of domain transactions.
func ToStudentTransactionResponses(txns []domain.StudentTransaction) []StudentTransactionResponse {
	out := make([]StudentTransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToStudentTransactionResponse(&txns[i])
	}
	return out
}
