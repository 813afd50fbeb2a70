package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// FeeReader defines read operations for fee structures.
type FeeReader interface {
	// FindFeeStructure retrieves the fee amount for an exact (kind, term,
	// academic year) triple. There is no fuzzy fallback: a missing structure
	// is ErrNotFound and posting must fail rather than charge zero.
	FindFeeStructure(ctx context.Context, kind domain.FeeKind, term, academicYear string) (*domain.FeeStructure, error)
}

// FeeWriter defines write operations for fee structures.
type FeeWriter interface {
	// SaveFeeStructure inserts a new fee structure.
	SaveFeeStructure(ctx context.Context, fee domain.FeeStructure) error
}

// EnrollmentReader defines read operations for rooms and enrollments.
type EnrollmentReader interface {
	// FindRoomByID retrieves a room.
	FindRoomByID(ctx context.Context, roomID string) (*domain.Room, error)

	// FindEnrollment retrieves a student's enrollment for a term/year, if any.
	FindEnrollment(ctx context.Context, studentID, term, academicYear string) (*domain.Enrollment, error)

	// FindEnrollmentByID retrieves an enrollment by ID.
	FindEnrollmentByID(ctx context.Context, enrollmentID string) (*domain.Enrollment, error)

	// FindEnrollmentByJournalID retrieves the enrollment backed by the given
	// journal entry, if any.
	FindEnrollmentByJournalID(ctx context.Context, journalID string) (*domain.Enrollment, error)
}

// EnrollmentWriter defines write operations for rooms and enrollments.
type EnrollmentWriter interface {
	// SaveRoom inserts a new room.
	SaveRoom(ctx context.Context, room domain.Room) error

	// LockRoomForUpdate row-locks a room and returns it together with the
	// current count of posted enrollments, inside the caller's transaction.
	// The lock serializes racing capacity checks.
	LockRoomForUpdate(ctx context.Context, tx pgx.Tx, roomID string) (*domain.Room, int, error)

	// SaveEnrollmentInTx inserts an enrollment inside the caller's transaction.
	SaveEnrollmentInTx(ctx context.Context, tx pgx.Tx, enrollment domain.Enrollment) error

	// UpdateEnrollmentStatusInTx updates an enrollment's status inside the
	// caller's transaction.
	UpdateEnrollmentStatusInTx(ctx context.Context, tx pgx.Tx, enrollmentID string, status domain.EnrollmentStatus, updatedBy string) error

	// DeleteEnrollmentInTx removes an enrollment row inside the caller's
	// transaction. Only the grace-period cancel path uses this.
	DeleteEnrollmentInTx(ctx context.Context, tx pgx.Tx, enrollmentID string) error
}

// EnrollmentRepositoryFacade combines fee, room and enrollment operations.
type EnrollmentRepositoryFacade interface {
	FeeReader
	FeeWriter
	EnrollmentReader
	EnrollmentWriter
}
