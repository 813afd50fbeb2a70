package services

import (
	"context"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// AccountSvcFacade exposes chart-of-accounts registry operations.
type AccountSvcFacade interface {
	// CreateAccount registers a new account. The code's leading digit must
	// match the declared type.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error)

	// GetAccountByID retrieves one account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves one account by its unique code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by ID.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// GetAccountsByCodes retrieves multiple accounts keyed by code.
	GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves active accounts.
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)

	// UpdateAccount updates mutable fields (name, description).
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, updaterID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive; inactive accounts reject
	// new journal lines.
	DeactivateAccount(ctx context.Context, accountID string, updaterID string) error
}
