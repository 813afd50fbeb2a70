package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	"github.com/openedu/school_ledger_app/internal/models"
	"github.com/openedu/school_ledger_app/internal/utils/mapping"
)

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for materialized account balances.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepositoryFacade {
	return &PgxBalanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

// FindBalancesByAccountID retrieves all currency rows for one account.
func (r *PgxBalanceRepository) FindBalancesByAccountID(ctx context.Context, accountID string) ([]domain.AccountBalance, error) {
	query := `
		SELECT account_id, currency_code, balance, as_of
		FROM account_balances
		WHERE account_id = $1
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return scanBalanceRows(rows)
}

// FindAllBalances retrieves every materialized balance row.
func (r *PgxBalanceRepository) FindAllBalances(ctx context.Context) ([]domain.AccountBalance, error) {
	query := `
		SELECT account_id, currency_code, balance, as_of
		FROM account_balances
		ORDER BY account_id, currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all balances: %w", err)
	}
	defer rows.Close()

	return scanBalanceRows(rows)
}

// AggregateFromLines recomputes every (account, currency) balance straight
// from the journal lines. The sign rule lives in the CASE expression: debit
// increases debit-normal accounts (ASSET, EXPENSE) and decreases the rest.
func (r *PgxBalanceRepository) AggregateFromLines(ctx context.Context) ([]domain.AccountBalance, error) {
	query := `
		SELECT l.account_id,
		       l.currency_code,
		       SUM(CASE WHEN a.account_type IN ('ASSET', 'EXPENSE')
		                THEN l.debit - l.credit
		                ELSE l.credit - l.debit
		           END) AS balance,
		       MAX(l.created_at) AS as_of
		FROM journal_lines l
		JOIN accounts a ON l.account_id = a.account_id
		GROUP BY l.account_id, l.currency_code
		ORDER BY l.account_id, l.currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balances from lines: %w", err)
	}
	defer rows.Close()

	return scanBalanceRows(rows)
}

// ApplyDeltasInTx adds signed deltas to balance rows, upserting absent rows,
// inside the caller's transaction. The caller holds FOR UPDATE locks on the
// affected accounts.
func (r *PgxBalanceRepository) ApplyDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]map[string]decimal.Decimal, asOf time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `
		INSERT INTO account_balances (account_id, currency_code, balance, as_of)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, currency_code) DO UPDATE SET
			balance = account_balances.balance + EXCLUDED.balance,
			as_of = EXCLUDED.as_of;
	`

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(deltas))
	for accountID, byCurrency := range deltas {
		for currencyCode, delta := range byCurrency {
			if delta.IsZero() {
				continue
			}
			batch.Queue(query, accountID, currencyCode, delta, asOf)
			keys = append(keys, accountID+"/"+currencyCode)
		}
	}

	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to apply balance delta for %s: %w", keys[i], err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance delta batch: %w", err)
	}

	return batchErr
}

// RebuildAllInTx locks the balance table, clears it and rewrites the set
// from the journal lines. Concurrent posts queue behind the table lock and
// apply their deltas on top of the fresh rows after commit, so the rebuild
// never loses an in-flight entry.
func (r *PgxBalanceRepository) RebuildAllInTx(ctx context.Context, tx pgx.Tx) (int, error) {
	if _, err := tx.Exec(ctx, `LOCK TABLE account_balances IN EXCLUSIVE MODE;`); err != nil {
		return 0, apperrors.NewAppError(500, "failed to lock account balances for rebuild", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM account_balances;`); err != nil {
		return 0, apperrors.NewAppError(500, "failed to clear account balances", err)
	}

	query := `
		INSERT INTO account_balances (account_id, currency_code, balance, as_of)
		SELECT l.account_id,
		       l.currency_code,
		       SUM(CASE WHEN a.account_type IN ('ASSET', 'EXPENSE')
		                THEN l.debit - l.credit
		                ELSE l.credit - l.debit
		           END),
		       NOW()
		FROM journal_lines l
		JOIN accounts a ON l.account_id = a.account_id
		GROUP BY l.account_id, l.currency_code;
	`
	cmdTag, err := tx.Exec(ctx, query)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to rewrite account balances", err)
	}

	return int(cmdTag.RowsAffected()), nil
}

func scanBalanceRows(rows pgx.Rows) ([]domain.AccountBalance, error) {
	balances := []domain.AccountBalance{}
	for rows.Next() {
		var m models.AccountBalance
		if err := rows.Scan(&m.AccountID, &m.CurrencyCode, &m.Balance, &m.AsOf); err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balances = append(balances, mapping.ToDomainAccountBalance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}
	return balances, nil
}
