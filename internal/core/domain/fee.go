package domain

import "github.com/shopspring/decimal"

// FeeKind classifies a fee structure by the business event that charges it.
type FeeKind string

const (
	FeeTuition   FeeKind = "TUITION"
	FeeBoarding  FeeKind = "BOARDING"
	FeeUniform   FeeKind = "UNIFORM"
	FeeTransport FeeKind = "TRANSPORT"
)

// FeeStructure fixes the amount charged for a fee kind in an exact term and
// academic year. Posting requires an exact match; there is no fallback to a
// zero amount when the structure is missing.
type FeeStructure struct {
	FeeStructureID string          `json:"feeStructureID"`
	Kind           FeeKind         `json:"kind"`
	Term           string          `json:"term"`
	AcademicYear   string          `json:"academicYear"`
	Amount         decimal.Decimal `json:"amount"`
	CurrencyCode   string          `json:"currencyCode"`
	AuditFields
}

// Room is a capacity-constrained resource checked before enrollment.
type Room struct {
	RoomID   string `json:"roomID"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	AuditFields
}

// EnrollmentStatus tracks the lifecycle of an enrollment as processed by the
// posting orchestrator.
type EnrollmentStatus string

const (
	EnrollmentPosted   EnrollmentStatus = "POSTED"
	EnrollmentReversed EnrollmentStatus = "REVERSED"
)

// Enrollment records a student's placement for a term, linked to the journals
// it posted. Cancel and reverse must cover every linked journal, or a boarder
// would keep owing the boarding charge after the enrollment is undone.
type Enrollment struct {
	EnrollmentID string `json:"enrollmentID"`
	StudentID    string `json:"studentID"`
	RoomID       string `json:"roomID,omitempty"` // Empty for day scholars
	Term         string `json:"term"`
	AcademicYear string `json:"academicYear"`
	// JournalID is the tuition charge; BoardingJournalID is set for boarders.
	JournalID         string           `json:"journalID"`
	BoardingJournalID string           `json:"boardingJournalID,omitempty"`
	Status            EnrollmentStatus `json:"status"`
	AuditFields
}

// JournalIDs returns every journal posted by this enrollment.
func (e Enrollment) JournalIDs() []string {
	ids := []string{e.JournalID}
	if e.BoardingJournalID != "" {
		ids = append(ids, e.BoardingJournalID)
	}
	return ids
}
