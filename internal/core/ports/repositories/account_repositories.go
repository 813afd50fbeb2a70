package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs
	// are simply absent from the map; the caller decides whether that is an
	// error.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves active accounts ordered by code.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// HasJournalLines reports whether any journal line references the account.
	// Type and code are immutable once this is true.
	HasJournalLines(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates the mutable fields (name, description, active flag).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository operations.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// AccountTxReader defines locking reads used inside a posting transaction.
type AccountTxReader interface {
	// FindAccountsByIDsForUpdate retrieves and row-locks accounts. It fails
	// with ErrNotFound when any requested account is missing.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)
}

// AccountRepositoryWithTx extends the facade with in-transaction reads.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	AccountTxReader
}
