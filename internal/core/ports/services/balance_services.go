package services

import (
	"context"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// BalanceSvcFacade exposes the account balance materializer. Incremental
// updates happen inside the journal store's posting transaction; this facade
// covers reads, the full recompute and the drift check.
type BalanceSvcFacade interface {
	// GetBalances retrieves the materialized per-currency balances of one
	// account.
	GetBalances(ctx context.Context, accountID string) ([]domain.AccountBalance, error)

	// RecomputeAll deletes every balance row and rebuilds the set from the
	// journal lines in one transaction. Idempotent; this is the canonical
	// definition of correctness for incremental maintenance.
	RecomputeAll(ctx context.Context) (int, error)

	// CheckDrift compares materialized balances against a fresh recompute
	// and returns the disagreeing rows. Any drift at or beyond tolerance is
	// also signalled with ErrIntegrityDrift; nothing is auto-corrected.
	CheckDrift(ctx context.Context) ([]dto.AccountDrift, error)
}
