package models

import "github.com/shopspring/decimal"

// FeeStructure is the db representation of a term/year fee amount.
type FeeStructure struct {
	FeeStructureID string          `db:"fee_structure_id"`
	Kind           string          `db:"kind"`
	Term           string          `db:"term"`
	AcademicYear   string          `db:"academic_year"`
	Amount         decimal.Decimal `db:"amount"`
	CurrencyCode   string          `db:"currency_code"`
	AuditFields
}

// Room is the db representation of a capacity-constrained resource.
type Room struct {
	RoomID   string `db:"room_id"`
	Name     string `db:"name"`
	Capacity int    `db:"capacity"`
	AuditFields
}

// Enrollment is the db representation of a student placement.
type Enrollment struct {
	EnrollmentID string  `db:"enrollment_id"`
	StudentID    string  `db:"student_id"`
	RoomID       *string `db:"room_id"`
	Term         string  `db:"term"`
	AcademicYear string  `db:"academic_year"`
	JournalID    string  `db:"journal_id"`
	// BoardingJournalID is NULL for day scholars.
	BoardingJournalID *string `db:"boarding_journal_id"`
	Status            string  `db:"status"`
	AuditFields
}
