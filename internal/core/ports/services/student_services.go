package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// RecordStudentTxnInput is the shape the posting orchestrator hands to the
// sub-ledger; JournalID is mandatory so every movement stays tied to the
// journal entry posted in the same transaction.
type RecordStudentTxnInput struct {
	StudentID    string
	TxnType      domain.StudentTxnType
	Amount       decimal.Decimal
	Description  string
	Term         string
	AcademicYear string
	JournalID    string
	ActorID      string
}

// StudentLedgerSvcFacade exposes the student-scoped sub-ledger.
type StudentLedgerSvcFacade interface {
	// CreateStudent registers a student.
	CreateStudent(ctx context.Context, req dto.CreateStudentRequest, creatorID string) (*domain.Student, error)

	// GetStudent retrieves a student.
	GetStudent(ctx context.Context, studentID string) (*domain.Student, error)

	// RecordInTx appends a sub-ledger transaction and moves the student's
	// balance, inside the caller's transaction.
	RecordInTx(ctx context.Context, tx pgx.Tx, input RecordStudentTxnInput) (*domain.StudentTransaction, error)

	// Reverse posts the opposite-type transaction for the same amount,
	// within the grace window (30 days, boundary inclusive). Past the
	// window it fails with ErrGracePeriodExpired. History is preserved;
	// nothing is edited in place. The compensating journal entry backing
	// the reversal is created in the same transaction.
	Reverse(ctx context.Context, transactionID string, actorID string) (*domain.StudentTransaction, error)

	// Recalculate re-sums the student's transactions and overwrites the
	// materialized balance.
	Recalculate(ctx context.Context, studentID string) (*domain.StudentBalance, error)

	// GetBalance retrieves the materialized balance.
	GetBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error)

	// ListTransactions retrieves a keyset-paginated page of the student's
	// transactions.
	ListTransactions(ctx context.Context, studentID string, params dto.ListStudentTransactionsParams) (*dto.ListStudentTransactionsResponse, error)
}
