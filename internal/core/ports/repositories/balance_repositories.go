package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// BalanceReader defines read operations over materialized account balances.
type BalanceReader interface {
	// FindBalancesByAccountID retrieves all currency rows for one account.
	FindBalancesByAccountID(ctx context.Context, accountID string) ([]domain.AccountBalance, error)

	// FindAllBalances retrieves every materialized balance row.
	FindAllBalances(ctx context.Context) ([]domain.AccountBalance, error)

	// AggregateFromLines recomputes what every (account, currency) balance
	// should be, straight from the journal lines with the sign rule applied
	// in SQL. This is the canonical definition of correctness; the drift
	// check compares materialized rows against it.
	AggregateFromLines(ctx context.Context) ([]domain.AccountBalance, error)
}

// BalanceWriter defines write operations over materialized account balances.
type BalanceWriter interface {
	// ApplyDeltasInTx adds signed deltas to balance rows (upserting absent
	// rows) inside the caller's transaction.
	ApplyDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]map[string]decimal.Decimal, asOf time.Time) error

	// RebuildAllInTx locks the balance table, deletes every row and rewrites
	// the set from the journal lines in a single statement chain, inside the
	// caller's transaction. Returns the number of rows written. Concurrent
	// posts block on the table lock and apply their deltas on top of the
	// fresh rows once it commits.
	RebuildAllInTx(ctx context.Context, tx pgx.Tx) (int, error)
}

// BalanceRepositoryFacade combines balance read and write operations.
type BalanceRepositoryFacade interface {
	BalanceReader
	BalanceWriter
	TransactionManager
}
