package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	"github.com/openedu/school_ledger_app/internal/models"
	"github.com/openedu/school_ledger_app/internal/utils/mapping"
	"github.com/openedu/school_ledger_app/internal/utils/pagination"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal and line data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, journal_ref, journal_date, description, reference, status,
	       original_journal_id, reversing_journal_id,
	       created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (models.Journal, error) {
	var m models.Journal
	var reference sql.NullString
	var originalID sql.NullString
	var reversingID sql.NullString

	err := row.Scan(
		&m.JournalID,
		&m.JournalRef,
		&m.JournalDate,
		&m.Description,
		&reference,
		&m.Status,
		&originalID,
		&reversingID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if reference.Valid {
		m.Reference = reference.String
	}
	if originalID.Valid {
		m.OriginalJournalID = &originalID.String
	}
	if reversingID.Valid {
		m.ReversingJournalID = &reversingID.String
	}
	return m, nil
}

// SaveJournalInTx persists the journal header and its lines within the caller's transaction.
func (r *PgxJournalRepository) SaveJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, lines []domain.JournalLine) error {
	modelJournal := mapping.ToModelJournal(journal)

	// Reference is an optional idempotency key; store NULL rather than ""
	// so the partial unique index does not collide on empty strings.
	var reference sql.NullString
	if modelJournal.Reference != "" {
		reference = sql.NullString{String: modelJournal.Reference, Valid: true}
	}

	journalQuery := `
		INSERT INTO journals (
			journal_id, journal_ref, journal_date, description, reference, status,
			original_journal_id, reversing_journal_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, journalQuery,
		modelJournal.JournalID,
		modelJournal.JournalRef,
		modelJournal.JournalDate,
		modelJournal.Description,
		reference,
		modelJournal.Status,
		modelJournal.OriginalJournalID,
		modelJournal.ReversingJournalID,
		modelJournal.CreatedAt,
		modelJournal.CreatedBy,
		modelJournal.LastUpdatedAt,
		modelJournal.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: journal with reference %s already exists", apperrors.ErrDuplicate, modelJournal.Reference)
		}
		return apperrors.NewAppError(500, "failed to insert journal "+modelJournal.JournalID, err)
	}

	lineQuery := `
		INSERT INTO journal_lines (line_id, journal_id, account_id, debit, credit, currency_code, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	batch := &pgx.Batch{}
	for _, line := range lines {
		modelLine := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.JournalID,
			modelLine.AccountID,
			modelLine.Debit,
			modelLine.Credit,
			modelLine.CurrencyCode,
			modelLine.Description,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for journal "+modelJournal.JournalID, err)
	}

	return nil
}

// DeleteJournalInTx removes a journal and its lines within the caller's transaction.
// Balance rows are untouched; the caller applies the inverse deltas.
func (r *PgxJournalRepository) DeleteJournalInTx(ctx context.Context, tx pgx.Tx, journalID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1;`, journalID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for journal "+journalID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM journals WHERE journal_id = $1;`, journalID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation
			return fmt.Errorf("%w: journal %s is still referenced", apperrors.ErrConflict, journalID)
		}
		return apperrors.NewAppError(500, "failed to delete journal "+journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal " + journalID + " not found for delete")
	}
	return nil
}

// FindJournalByID retrieves a journal header by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`

	m, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal by ID "+journalID, err)
	}

	domainJournal := mapping.ToDomainJournal(m)
	return &domainJournal, nil
}

// FindJournalByReference retrieves a journal by its external reference key.
func (r *PgxJournalRepository) FindJournalByReference(ctx context.Context, reference string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE reference = $1;`

	m, err := scanJournal(r.Pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal by reference "+reference, err)
	}

	domainJournal := mapping.ToDomainJournal(m)
	return &domainJournal, nil
}

// FindLinesByJournalID retrieves all lines associated with a specific journal.
func (r *PgxJournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, journal_id, account_id, debit, credit, currency_code, description, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_lines
		WHERE journal_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for journal "+journalID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		var l models.JournalLine
		err := rows.Scan(
			&l.LineID,
			&l.JournalID,
			&l.AccountID,
			&l.Debit,
			&l.Credit,
			&l.CurrencyCode,
			&l.Description,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for journal "+journalID, err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for journal "+journalID, err)
	}

	return mapping.ToDomainJournalLineSlice(lines), nil
}

// ListLinesByAccountID retrieves a paginated list of lines for a specific account using token-based pagination.
func (r *PgxJournalRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to decide whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.line_id, l.journal_id, l.account_id, l.debit, l.credit, l.currency_code, l.description,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, j.journal_date
		FROM journal_lines l
		JOIN journals j ON l.journal_id = j.journal_id
		WHERE l.account_id = $1
	`
	// Ordering must be stable for the keyset cursor to work.
	orderByClause := `ORDER BY j.journal_date DESC, l.created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (j.journal_date, l.created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	type lineWithDate struct {
		line models.JournalLine
		date time.Time
	}

	fetched := make([]lineWithDate, 0, fetchLimit)
	for rows.Next() {
		var l models.JournalLine
		var journalDate time.Time
		err := rows.Scan(
			&l.LineID,
			&l.JournalID,
			&l.AccountID,
			&l.Debit,
			&l.Credit,
			&l.CurrencyCode,
			&l.Description,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&journalDate,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan line row for account "+accountID, err)
		}
		fetched = append(fetched, lineWithDate{line: l, date: journalDate})
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	var results []models.JournalLine
	if len(fetched) > limit {
		last := fetched[limit-1]
		token := pagination.EncodeToken(last.date, last.line.CreatedAt)
		nextTokenVal = &token

		results = make([]models.JournalLine, limit)
		for i := 0; i < limit; i++ {
			results[i] = fetched[i].line
		}
	} else {
		results = make([]models.JournalLine, len(fetched))
		for i, f := range fetched {
			results[i] = f.line
		}
	}

	return mapping.ToDomainJournalLineSlice(results), nextTokenVal, nil
}

// ListJournals retrieves a paginated list of journals using token-based pagination.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + journalColumns + ` FROM journals`

	filterClause := `WHERE 1=1`
	if !includeReversals {
		filterClause += ` AND status != 'REVERSED' AND reversing_journal_id IS NULL AND original_journal_id IS NULL`
	}

	orderByClause := `ORDER BY journal_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (journal_date, created_at) < ($1, $2)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + filterClause + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journals", err)
	}
	defer rows.Close()

	modelJournals := make([]models.Journal, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanJournal(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal row", scanErr)
		}
		modelJournals = append(modelJournals, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal rows", err)
	}

	var nextTokenVal *string
	results := modelJournals
	if len(modelJournals) > limit {
		lastJournal := modelJournals[limit-1]
		newToken := pagination.EncodeToken(lastJournal.JournalDate, lastJournal.CreatedAt)
		nextTokenVal = &newToken
		results = modelJournals[:limit]
	}

	domainJournals := make([]domain.Journal, len(results))
	for i, m := range results {
		domainJournals[i] = mapping.ToDomainJournal(m)
	}

	return domainJournals, nextTokenVal, nil
}

// UpdateJournalStatusAndLinksInTx updates the status and reversal links for a journal within the caller's transaction.
func (r *PgxJournalRepository) UpdateJournalStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, journalID string, status domain.JournalStatus, reversingJournalID *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE journals
		SET status = $2,
		    reversing_journal_id = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE journal_id = $1;
	`

	cmdTag, err := tx.Exec(ctx, query,
		journalID,
		status,
		reversingJournalID,
		updatedAt,
		updatedBy,
	)

	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal status/links for "+journalID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal " + journalID + " not found for update")
	}

	return nil
}
