package services

import (
	"context"

	"github.com/openedu/school_ledger_app/internal/dto"
)

// PostingSvcFacade orchestrates business events: each operation composes a
// balanced journal entry, the matching student sub-ledger transaction and
// the balance updates inside one atomic unit of work, retried on transient
// lock conflicts. No partial state is ever observable.
type PostingSvcFacade interface {
	// ValidateRules resolves every configured posting rule against the
	// chart of accounts. Run at startup; a rule naming an absent or
	// inactive account refuses to boot rather than fail mid-posting.
	ValidateRules(ctx context.Context) error

	// EnrollStudent charges tuition for an exact-match fee structure and
	// records the enrollment. A missing fee structure or exhausted room
	// capacity fails with ErrPreconditionFailed; nothing is posted.
	EnrollStudent(ctx context.Context, req dto.EnrollStudentRequest, actorID string) (*dto.PostingResponse, error)

	// RecordPayment posts a payment against the student's receivable.
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actorID string) (*dto.PostingResponse, error)

	// WaiveFee forgives part of the student's receivable.
	WaiveFee(ctx context.Context, req dto.WaiveFeeRequest, actorID string) (*dto.PostingResponse, error)

	// SellUniform charges the uniform fee for the term.
	SellUniform(ctx context.Context, req dto.ChargeFeeRequest, actorID string) (*dto.PostingResponse, error)

	// ChargeTransport charges the transport fee for the term.
	ChargeTransport(ctx context.Context, req dto.ChargeFeeRequest, actorID string) (*dto.PostingResponse, error)

	// RefundPayment returns money to the student, increasing what they owe.
	RefundPayment(ctx context.Context, req dto.RefundPaymentRequest, actorID string) (*dto.PostingResponse, error)

	// PostAdjustment posts a manual correction between two caller-chosen
	// accounts, optionally mirrored into a student's sub-ledger. Unlike the
	// rule-driven events the account codes come from the request.
	PostAdjustment(ctx context.Context, req dto.PostAdjustmentRequest, actorID string) (*dto.PostingResponse, error)

	// ReversePosting compensates a posted event: a reversing journal entry
	// plus the opposite sub-ledger transaction, atomically. History is
	// preserved.
	ReversePosting(ctx context.Context, journalID string, actorID string) (*dto.PostingResponse, error)

	// CancelEnrollment is the narrow grace-period deletion path: within the
	// window it removes the enrollment, its journal entry and the backing
	// sub-ledger movement outright, moving every derived balance back.
	// Past the window it fails with ErrGracePeriodExpired; reversal is the
	// correction mechanism from then on.
	CancelEnrollment(ctx context.Context, enrollmentID string, actorID string) (*dto.PostingResponse, error)
}
