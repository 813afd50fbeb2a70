package dto

import (
	"github.com/shopspring/decimal"
)

// EnrollStudentRequest is the payload to enroll a student for a term. The
// tuition amount comes from the fee structure, never from the caller.
type EnrollStudentRequest struct {
	StudentID    string `json:"studentID" binding:"required"`
	Term         string `json:"term" binding:"required"`
	AcademicYear string `json:"academicYear" binding:"required"`
	RoomID       string `json:"roomID"` // Optional: boarders only
	Reference    string `json:"reference"`
}

// PaymentMethod selects the settlement account debited by a payment.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentBank PaymentMethod = "BANK"
)

// RecordPaymentRequest is the payload to post a payment against a student's
// receivable. When CurrencyCode differs from the base currency, Rate must be
// supplied by the exchange-rate provider and is applied before posting.
type RecordPaymentRequest struct {
	StudentID    string           `json:"studentID" binding:"required"`
	Amount       decimal.Decimal  `json:"amount" binding:"required"`
	Method       PaymentMethod    `json:"method" binding:"required,oneof=CASH BANK"`
	CurrencyCode string           `json:"currencyCode"`
	Rate         *decimal.Decimal `json:"rate"`
	Description  string           `json:"description"`
	Reference    string           `json:"reference"`
}

// WaiveFeeRequest is the payload to waive part of a student's receivable.
type WaiveFeeRequest struct {
	StudentID   string          `json:"studentID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Reference   string          `json:"reference"`
}

// ChargeFeeRequest is the payload for fee-structure-driven charges (uniform
// sale, transport). The amount comes from the fee structure.
type ChargeFeeRequest struct {
	StudentID    string `json:"studentID" binding:"required"`
	Term         string `json:"term" binding:"required"`
	AcademicYear string `json:"academicYear" binding:"required"`
	Reference    string `json:"reference"`
}

// RefundPaymentRequest is the payload to refund a prior payment.
type RefundPaymentRequest struct {
	StudentID   string          `json:"studentID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

// PostAdjustmentRequest is the payload for a manual adjustment between two
// explicit accounts. When StudentID is set, StudentSide picks the sub-ledger
// side the adjustment is mirrored to.
type PostAdjustmentRequest struct {
	DebitAccountCode  string          `json:"debitAccountCode" binding:"required"`
	CreditAccountCode string          `json:"creditAccountCode" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	StudentID         string          `json:"studentID"`
	StudentSide       string          `json:"studentSide" binding:"required_with=StudentID,omitempty,oneof=DEBIT CREDIT"`
	Description       string          `json:"description" binding:"required"`
	Reference         string          `json:"reference"`
}

// PostingResponse reports the atomic result of a posting operation: the
// journal entry, the linked sub-ledger transaction and the student's balance
// after the event.
type PostingResponse struct {
	JournalID            string                  `json:"journalID"`
	StudentTransactionID string                  `json:"studentTransactionID,omitempty"`
	EnrollmentID         string                  `json:"enrollmentID,omitempty"`
	StudentBalance       *StudentBalanceResponse `json:"studentBalance,omitempty"`
}
