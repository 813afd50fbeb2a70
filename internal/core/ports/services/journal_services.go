package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// JournalSvcFacade exposes the append-only journal store.
type JournalSvcFacade interface {
	// Post validates and durably appends a balanced entry, applying its
	// balance deltas in the same transaction. Rejects unbalanced entries
	// with ErrUnbalancedEntry and absent/inactive accounts with
	// ErrUnknownAccount.
	Post(ctx context.Context, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error)

	// PostInTx is Post inside the caller's transaction; the posting
	// orchestrator uses it to compose the journal write with sub-ledger
	// writes atomically. Lines are built by the caller.
	PostInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, lines []domain.JournalLine) error

	// Delete removes an entry and its lines and applies the inverse balance
	// deltas, returning the reversals that were applied. Only the narrow
	// grace-period path uses this; compensating entries are the primary
	// correction mechanism.
	Delete(ctx context.Context, journalID string, actorID string) ([]domain.BalanceDelta, error)

	// DeleteInTx is Delete inside the caller's transaction.
	DeleteInTx(ctx context.Context, tx pgx.Tx, journalID string) ([]domain.BalanceDelta, error)

	// Reverse posts a compensating entry with debit/credit swapped and marks
	// the original REVERSED.
	Reverse(ctx context.Context, journalID string, actorID string) (*domain.Journal, error)

	// ReverseInTx is Reverse inside the caller's transaction.
	ReverseInTx(ctx context.Context, tx pgx.Tx, journalID string, actorID string) (*domain.Journal, error)

	// GetByID retrieves a journal with its lines.
	GetByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindByReference retrieves a journal by its external reference key.
	FindByReference(ctx context.Context, reference string) (*domain.Journal, error)

	// List retrieves a keyset-paginated page of journals.
	List(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// ListLinesByAccount retrieves a keyset-paginated page of lines for one
	// account.
	ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}
