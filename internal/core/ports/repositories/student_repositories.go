package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// StudentReader defines read operations for students and their sub-ledger.
type StudentReader interface {
	// FindStudentByID retrieves a student by ID.
	FindStudentByID(ctx context.Context, studentID string) (*domain.Student, error)

	// FindTransactionByID retrieves one sub-ledger transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.StudentTransaction, error)

	// FindTransactionByJournalID retrieves the sub-ledger transaction backed
	// by the given journal entry, if any.
	FindTransactionByJournalID(ctx context.Context, journalID string) (*domain.StudentTransaction, error)

	// ListTransactionsByStudentID retrieves a keyset-paginated list of a
	// student's transactions, most recent first.
	ListTransactionsByStudentID(ctx context.Context, studentID string, limit int, nextToken *string) ([]domain.StudentTransaction, *string, error)

	// FindBalance retrieves the materialized balance for one student.
	FindBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error)

	// FindBalanceForUpdate row-locks and reads the materialized balance
	// inside the caller's transaction. Preconditions that compare against
	// the balance (waiver, refund) read through this so racing postings
	// serialize instead of both passing the check.
	FindBalanceForUpdate(ctx context.Context, tx pgx.Tx, studentID string) (*domain.StudentBalance, error)

	// SumTransactions recomputes sum(CREDIT) - sum(DEBIT) for one student
	// straight from the transaction log.
	SumTransactions(ctx context.Context, studentID string) (decimal.Decimal, error)

	// ListStudentIDsWithTransactions returns every student that has at least
	// one sub-ledger transaction. Used by the repair utility.
	ListStudentIDsWithTransactions(ctx context.Context) ([]string, error)

	// AggregateAllBalances recomputes every student's balance from the
	// transaction log in one query.
	AggregateAllBalances(ctx context.Context) (map[string]decimal.Decimal, error)

	// ListAllBalances retrieves every materialized student balance row.
	ListAllBalances(ctx context.Context) ([]domain.StudentBalance, error)
}

// StudentWriter defines write operations for students and their sub-ledger.
type StudentWriter interface {
	// SaveStudent inserts a new student.
	SaveStudent(ctx context.Context, student domain.Student) error

	// RecordTransactionInTx appends a sub-ledger transaction and moves the
	// student's materialized balance by the signed amount, inside the
	// caller's transaction. journal_id must reference an existing journal.
	RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.StudentTransaction) error

	// ReplaceBalance overwrites the materialized balance for one student.
	// Used by recalculation only.
	ReplaceBalance(ctx context.Context, studentID string, balance decimal.Decimal, asOf time.Time) error

	// ReplaceBalanceInTx is ReplaceBalance inside the caller's transaction.
	ReplaceBalanceInTx(ctx context.Context, tx pgx.Tx, studentID string, balance decimal.Decimal, asOf time.Time) error

	// DeleteTransactionsByJournalInTx removes the sub-ledger transactions
	// backed by a journal and moves the student balances back, inside the
	// caller's transaction. Returns the deleted transactions. Only the
	// grace-period cancel path uses this, just before the journal itself is
	// deleted; journal_id is NOT NULL so the rows cannot outlive the entry.
	DeleteTransactionsByJournalInTx(ctx context.Context, tx pgx.Tx, journalID string, asOf time.Time) ([]domain.StudentTransaction, error)
}

// StudentRepositoryFacade combines student repository operations.
type StudentRepositoryFacade interface {
	StudentReader
	StudentWriter
	TransactionManager
}
