package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/utils/accounting"
)

// balanceService reads the materialized account balances and owns the full
// recompute and the drift check. Incremental maintenance happens inside the
// journal posting transaction.
type balanceService struct {
	BaseService
	balanceRepo portsrepo.BalanceRepositoryFacade
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(balanceRepo portsrepo.BalanceRepositoryFacade) portssvc.BalanceSvcFacade {
	return &balanceService{balanceRepo: balanceRepo}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// GetBalances retrieves the materialized per-currency balances of one account.
func (s *balanceService) GetBalances(ctx context.Context, accountID string) ([]domain.AccountBalance, error) {
	return s.balanceRepo.FindBalancesByAccountID(ctx, accountID)
}

// RecomputeAll rebuilds every balance row from the journal lines in one
// transaction. Running it twice in a row is a no-op.
func (s *balanceService) RecomputeAll(ctx context.Context) (int, error) {
	tx, err := s.balanceRepo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer s.balanceRepo.Rollback(ctx, tx)

	rows, err := s.balanceRepo.RebuildAllInTx(ctx, tx)
	if err != nil {
		return 0, err
	}

	if err := s.balanceRepo.Commit(ctx, tx); err != nil {
		return 0, err
	}

	s.LogInfo(ctx, "Account balances recomputed", "rows", rows)
	return rows, nil
}

// CheckDrift compares materialized balances against a fresh recompute.
// Drift at or beyond tolerance is reported and signalled with
// ErrIntegrityDrift; nothing is auto-corrected.
func (s *balanceService) CheckDrift(ctx context.Context) ([]dto.AccountDrift, error) {
	materialized, err := s.balanceRepo.FindAllBalances(ctx)
	if err != nil {
		return nil, err
	}
	recomputed, err := s.balanceRepo.AggregateFromLines(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ account, currency string }
	matBy := make(map[key]decimal.Decimal, len(materialized))
	for _, b := range materialized {
		matBy[key{b.AccountID, b.CurrencyCode}] = b.Balance
	}
	recBy := make(map[key]decimal.Decimal, len(recomputed))
	for _, b := range recomputed {
		recBy[key{b.AccountID, b.CurrencyCode}] = b.Balance
	}

	drifts := []dto.AccountDrift{}
	for k, rec := range recBy {
		mat := matBy[k] // zero when the materialized row is missing
		diff := mat.Sub(rec)
		if diff.Abs().GreaterThanOrEqual(accounting.BalanceTolerance) {
			drifts = append(drifts, dto.AccountDrift{
				AccountID:    k.account,
				CurrencyCode: k.currency,
				Materialized: mat,
				Recomputed:   rec,
				Difference:   diff,
			})
		}
	}
	// Materialized rows with no lines behind them are drift too.
	for k, mat := range matBy {
		if _, covered := recBy[k]; covered {
			continue
		}
		if mat.Abs().GreaterThanOrEqual(accounting.BalanceTolerance) {
			drifts = append(drifts, dto.AccountDrift{
				AccountID:    k.account,
				CurrencyCode: k.currency,
				Materialized: mat,
				Recomputed:   decimal.Zero,
				Difference:   mat,
			})
		}
	}

	if len(drifts) > 0 {
		s.LogError(ctx, apperrors.ErrIntegrityDrift, "Account balance drift detected", "drift_count", len(drifts))
		return drifts, fmt.Errorf("%w: %d account balance rows disagree with recompute", apperrors.ErrIntegrityDrift, len(drifts))
	}
	return drifts, nil
}
