package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// studentLedgerService provides the student-scoped sub-ledger: registration,
// transaction recording, grace-window reversals and balance recalculation.
type studentLedgerService struct {
	BaseService
	studentRepo portsrepo.StudentRepositoryFacade
	journalSvc  portssvc.JournalSvcFacade
	gracePeriod time.Duration
}

// NewStudentLedgerService creates a new StudentLedgerService.
func NewStudentLedgerService(studentRepo portsrepo.StudentRepositoryFacade, journalSvc portssvc.JournalSvcFacade, gracePeriod time.Duration) portssvc.StudentLedgerSvcFacade {
	return &studentLedgerService{
		studentRepo: studentRepo,
		journalSvc:  journalSvc,
		gracePeriod: gracePeriod,
	}
}

var _ portssvc.StudentLedgerSvcFacade = (*studentLedgerService)(nil)

// CreateStudent registers a student.
func (s *studentLedgerService) CreateStudent(ctx context.Context, req dto.CreateStudentRequest, creatorID string) (*domain.Student, error) {
	now := time.Now().UTC()
	student := domain.Student{
		StudentID: uuid.NewString(),
		FullName:  req.FullName,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.studentRepo.SaveStudent(ctx, student); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Student registered", "student_id", student.StudentID)
	return &student, nil
}

// GetStudent retrieves a student.
func (s *studentLedgerService) GetStudent(ctx context.Context, studentID string) (*domain.Student, error) {
	return s.studentRepo.FindStudentByID(ctx, studentID)
}

// RecordInTx appends a sub-ledger transaction and moves the student's
// balance, inside the caller's transaction.
func (s *studentLedgerService) RecordInTx(ctx context.Context, tx pgx.Tx, input portssvc.RecordStudentTxnInput) (*domain.StudentTransaction, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrValidation)
	}
	if input.JournalID == "" {
		return nil, fmt.Errorf("%w: student transaction requires a backing journal entry", apperrors.ErrValidation)
	}

	student, err := s.studentRepo.FindStudentByID(ctx, input.StudentID)
	if err != nil {
		return nil, err
	}
	if !student.IsActive {
		return nil, fmt.Errorf("%w: student %s is inactive", apperrors.ErrPreconditionFailed, input.StudentID)
	}

	now := time.Now().UTC()
	txn := domain.StudentTransaction{
		TransactionID: uuid.NewString(),
		StudentID:     input.StudentID,
		TxnType:       input.TxnType,
		Amount:        input.Amount,
		Description:   input.Description,
		Term:          input.Term,
		AcademicYear:  input.AcademicYear,
		JournalID:     input.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     input.ActorID,
			LastUpdatedAt: now,
			LastUpdatedBy: input.ActorID,
		},
	}

	if err := s.studentRepo.RecordTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// Reverse posts the opposite-type transaction for the same amount within the
// grace window, boundary inclusive. The compensating journal entry is
// created in the same transaction, so both ledgers move together.
func (s *studentLedgerService) Reverse(ctx context.Context, transactionID string, actorID string) (*domain.StudentTransaction, error) {
	original, err := s.studentRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if now.Sub(original.CreatedAt) > s.gracePeriod {
		return nil, fmt.Errorf("%w: transaction %s was recorded at %s", apperrors.ErrGracePeriodExpired, transactionID, original.CreatedAt.Format(time.RFC3339))
	}

	tx, err := s.studentRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.studentRepo.Rollback(ctx, tx)

	// Reversing the backing journal also guards against double reversal:
	// an already-REVERSED journal fails the precondition.
	reversingJournal, err := s.journalSvc.ReverseInTx(ctx, tx, original.JournalID, actorID)
	if err != nil {
		return nil, err
	}

	compensating := domain.StudentTransaction{
		TransactionID:         uuid.NewString(),
		StudentID:             original.StudentID,
		TxnType:               original.TxnType.Opposite(),
		Amount:                original.Amount,
		Description:           fmt.Sprintf("Reversal of: %s", original.Description),
		Term:                  original.Term,
		AcademicYear:          original.AcademicYear,
		JournalID:             reversingJournal.JournalID,
		ReversesTransactionID: &original.TransactionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.studentRepo.RecordTransactionInTx(ctx, tx, compensating); err != nil {
		return nil, err
	}

	if err := s.studentRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Student transaction reversed", "transaction_id", transactionID, "compensating_id", compensating.TransactionID)
	return &compensating, nil
}

// Recalculate re-sums the student's transactions and overwrites the
// materialized balance. Safe to run repeatedly.
func (s *studentLedgerService) Recalculate(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	sum, err := s.studentRepo.SumTransactions(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.studentRepo.ReplaceBalance(ctx, studentID, sum, now); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Student balance recalculated", "student_id", studentID, "balance", sum.String())
	return &domain.StudentBalance{StudentID: studentID, Balance: sum, LastUpdated: now}, nil
}

// GetBalance retrieves the materialized balance. A student with no
// transactions has a zero balance rather than a missing one.
func (s *studentLedgerService) GetBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	balance, err := s.studentRepo.FindBalance(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.StudentBalance{StudentID: studentID}, nil
		}
		return nil, err
	}
	return balance, nil
}

// ListTransactions retrieves a keyset-paginated page of the student's
// transactions.
func (s *studentLedgerService) ListTransactions(ctx context.Context, studentID string, params dto.ListStudentTransactionsParams) (*dto.ListStudentTransactionsResponse, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	txns, nextToken, err := s.studentRepo.ListTransactionsByStudentID(ctx, studentID, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	return &dto.ListStudentTransactionsResponse{
		Transactions: dto.ToStudentTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
