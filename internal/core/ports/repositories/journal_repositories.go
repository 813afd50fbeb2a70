package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByID retrieves a journal header by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindJournalByReference retrieves a journal by its external reference
	// key. Used for idempotency lookups before posting.
	FindJournalByReference(ctx context.Context, reference string) (*domain.Journal, error)

	// ListJournals retrieves a keyset-paginated list of journals, most
	// recent first. Returns the page and the next-page token.
	ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data. Accepted entries
// are append-only: there is no operation that edits a line in place.
type JournalWriter interface {
	// SaveJournalInTx persists a journal header and its lines inside the
	// caller's transaction. Balance rows are not touched here; the caller
	// applies the deltas through the balance repository in the same
	// transaction.
	SaveJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, lines []domain.JournalLine) error

	// DeleteJournalInTx removes an entry and its lines inside the caller's
	// transaction. It does not touch balance rows; the caller applies the
	// inverse deltas through the balance repository.
	DeleteJournalInTx(ctx context.Context, tx pgx.Tx, journalID string) error

	// UpdateJournalStatusAndLinksInTx updates the status and reversal
	// linkage of a journal inside the caller's transaction.
	UpdateJournalStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, journalID string, status domain.JournalStatus, reversingJournalID *string, updatedBy string, updatedAt time.Time) error
}

// LineReader defines read operations for journal lines.
type LineReader interface {
	// FindLinesByJournalID retrieves all lines of one journal.
	FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error)

	// ListLinesByAccountID retrieves a keyset-paginated list of lines
	// touching one account.
	ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// JournalRepositoryFacade combines all journal repository operations.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LineReader
}

// JournalRepositoryWithTx extends the facade with transaction management so
// services can compose journal writes with other repositories atomically.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
