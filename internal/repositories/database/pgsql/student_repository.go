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
	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	"github.com/openedu/school_ledger_app/internal/models"
	"github.com/openedu/school_ledger_app/internal/utils/mapping"
	"github.com/openedu/school_ledger_app/internal/utils/pagination"
)

type PgxStudentRepository struct {
	BaseRepository
}

// newPgxStudentRepository creates a new repository for students and their sub-ledger.
func newPgxStudentRepository(pool *pgxpool.Pool) portsrepo.StudentRepositoryFacade {
	return &PgxStudentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.StudentRepositoryFacade = (*PgxStudentRepository)(nil)

const studentTxnColumns = `transaction_id, student_id, txn_type, amount, description, term, academic_year,
	       journal_id, reverses_transaction_id,
	       created_at, created_by, last_updated_at, last_updated_by`

func scanStudentTxn(row pgx.Row) (models.StudentTransaction, error) {
	var m models.StudentTransaction
	var reverses sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.StudentID,
		&m.TxnType,
		&m.Amount,
		&m.Description,
		&m.Term,
		&m.AcademicYear,
		&m.JournalID,
		&reverses,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if reverses.Valid {
		m.ReversesTransactionID = &reverses.String
	}
	return m, nil
}

// SaveStudent inserts a new student.
func (r *PgxStudentRepository) SaveStudent(ctx context.Context, student domain.Student) error {
	m := mapping.ToModelStudent(student)

	query := `
		INSERT INTO students (student_id, full_name, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.StudentID,
		m.FullName,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: student with ID %s already exists", apperrors.ErrDuplicate, m.StudentID)
		}
		return fmt.Errorf("failed to save student %s: %w", m.StudentID, err)
	}
	return nil
}

// FindStudentByID retrieves a student by ID.
func (r *PgxStudentRepository) FindStudentByID(ctx context.Context, studentID string) (*domain.Student, error) {
	query := `
		SELECT student_id, full_name, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM students
		WHERE student_id = $1;
	`
	var m models.Student
	err := r.Pool.QueryRow(ctx, query, studentID).Scan(
		&m.StudentID,
		&m.FullName,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find student by ID %s: %w", studentID, err)
	}

	d := mapping.ToDomainStudent(m)
	return &d, nil
}

// RecordTransactionInTx appends a sub-ledger transaction and moves the
// student's materialized balance, inside the caller's transaction. The
// journal_id column has a NOT NULL foreign key, so the backing journal must
// already exist in the same transaction.
func (r *PgxStudentRepository) RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.StudentTransaction) error {
	m := mapping.ToModelStudentTransaction(txn)

	insertQuery := `
		INSERT INTO student_transactions (transaction_id, student_id, txn_type, amount, description, term, academic_year, journal_id, reverses_transaction_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, insertQuery,
		m.TransactionID,
		m.StudentID,
		m.TxnType,
		m.Amount,
		m.Description,
		m.Term,
		m.AcademicYear,
		m.JournalID,
		m.ReversesTransactionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation
			return fmt.Errorf("%w: journal %s does not exist for student transaction %s", apperrors.ErrValidation, m.JournalID, m.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to insert student transaction "+m.TransactionID, err)
	}

	// Balance convention: CREDIT raises what the school owes the student,
	// DEBIT lowers it. A positive balance is money in the student's favour.
	delta := txn.Amount
	if txn.TxnType == domain.StudentDebit {
		delta = delta.Neg()
	}

	balanceQuery := `
		INSERT INTO student_balances (student_id, balance, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE SET
			balance = student_balances.balance + EXCLUDED.balance,
			last_updated = EXCLUDED.last_updated;
	`
	if _, err := tx.Exec(ctx, balanceQuery, m.StudentID, delta, m.CreatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to move balance for student "+m.StudentID, err)
	}

	return nil
}

// FindTransactionByID retrieves one sub-ledger transaction.
func (r *PgxStudentRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.StudentTransaction, error) {
	query := `SELECT ` + studentTxnColumns + ` FROM student_transactions WHERE transaction_id = $1;`

	m, err := scanStudentTxn(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find student transaction %s: %w", transactionID, err)
	}

	d := mapping.ToDomainStudentTransaction(m)
	return &d, nil
}

// FindTransactionByJournalID retrieves the sub-ledger transaction backed by the given journal, if any.
func (r *PgxStudentRepository) FindTransactionByJournalID(ctx context.Context, journalID string) (*domain.StudentTransaction, error) {
	query := `SELECT ` + studentTxnColumns + ` FROM student_transactions WHERE journal_id = $1;`

	m, err := scanStudentTxn(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find student transaction for journal %s: %w", journalID, err)
	}

	d := mapping.ToDomainStudentTransaction(m)
	return &d, nil
}

// ListTransactionsByStudentID retrieves a paginated list of a student's transactions using token-based pagination.
func (r *PgxStudentRepository) ListTransactionsByStudentID(ctx context.Context, studentID string, limit int, nextToken *string) ([]domain.StudentTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + studentTxnColumns + ` FROM student_transactions WHERE student_id = $1`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{studentID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastTransactionID, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		// Tuple comparison so rows sharing the boundary created_at are not
		// skipped across pages.
		cursorClause := `AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastTransactionID)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for student "+studentID, err)
	}
	defer rows.Close()

	fetched := make([]models.StudentTransaction, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanStudentTxn(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row for student "+studentID, scanErr)
		}
		fetched = append(fetched, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows for student "+studentID, err)
	}

	var nextTokenVal *string
	results := fetched
	if len(fetched) > limit {
		last := fetched[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		results = fetched[:limit]
	}

	return mapping.ToDomainStudentTransactionSlice(results), nextTokenVal, nil
}

// FindBalance retrieves the materialized balance for one student.
func (r *PgxStudentRepository) FindBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	query := `SELECT student_id, balance, last_updated FROM student_balances WHERE student_id = $1;`

	var m models.StudentBalance
	err := r.Pool.QueryRow(ctx, query, studentID).Scan(&m.StudentID, &m.Balance, &m.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find balance for student %s: %w", studentID, err)
	}

	d := mapping.ToDomainStudentBalance(m)
	return &d, nil
}

// FindBalanceForUpdate row-locks and reads the materialized balance inside
// the caller's transaction. A student with no balance row is not locked;
// callers treat that as a zero balance.
func (r *PgxStudentRepository) FindBalanceForUpdate(ctx context.Context, tx pgx.Tx, studentID string) (*domain.StudentBalance, error) {
	query := `SELECT student_id, balance, last_updated FROM student_balances WHERE student_id = $1 FOR UPDATE;`

	var m models.StudentBalance
	err := tx.QueryRow(ctx, query, studentID).Scan(&m.StudentID, &m.Balance, &m.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock balance for student %s: %w", studentID, err)
	}

	d := mapping.ToDomainStudentBalance(m)
	return &d, nil
}

// SumTransactions recomputes sum(CREDIT) - sum(DEBIT) for one student
// straight from the transaction log.
func (r *PgxStudentRepository) SumTransactions(ctx context.Context, studentID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN txn_type = 'CREDIT' THEN amount ELSE -amount END), 0)
		FROM student_transactions
		WHERE student_id = $1;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, studentID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for student %s: %w", studentID, err)
	}
	return sum, nil
}

// ListStudentIDsWithTransactions returns every student with at least one sub-ledger transaction.
func (r *PgxStudentRepository) ListStudentIDsWithTransactions(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT student_id FROM student_transactions ORDER BY student_id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query students with transactions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan student ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student IDs: %w", err)
	}
	return ids, nil
}

// AggregateAllBalances recomputes every student's balance from the
// transaction log in one query.
func (r *PgxStudentRepository) AggregateAllBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	query := `
		SELECT student_id,
		       SUM(CASE WHEN txn_type = 'CREDIT' THEN amount ELSE -amount END) AS balance
		FROM student_transactions
		GROUP BY student_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate student balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var id string
		var balance decimal.Decimal
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan aggregated student balance: %w", err)
		}
		balances[id] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregated student balances: %w", err)
	}
	return balances, nil
}

// ListAllBalances retrieves every materialized student balance row.
func (r *PgxStudentRepository) ListAllBalances(ctx context.Context) ([]domain.StudentBalance, error) {
	query := `SELECT student_id, balance, last_updated FROM student_balances ORDER BY student_id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query student balances: %w", err)
	}
	defer rows.Close()

	balances := []domain.StudentBalance{}
	for rows.Next() {
		var m models.StudentBalance
		if err := rows.Scan(&m.StudentID, &m.Balance, &m.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan student balance row: %w", err)
		}
		balances = append(balances, mapping.ToDomainStudentBalance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student balance rows: %w", err)
	}
	return balances, nil
}

// DeleteTransactionsByJournalInTx removes the sub-ledger transactions backed
// by a journal and moves the student balances back, inside the caller's
// transaction. Called just before the journal itself is deleted.
func (r *PgxStudentRepository) DeleteTransactionsByJournalInTx(ctx context.Context, tx pgx.Tx, journalID string, asOf time.Time) ([]domain.StudentTransaction, error) {
	query := `
		DELETE FROM student_transactions
		WHERE journal_id = $1
		RETURNING ` + studentTxnColumns + `;
	`
	rows, err := tx.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete student transactions for journal "+journalID, err)
	}

	deleted := []models.StudentTransaction{}
	for rows.Next() {
		m, scanErr := scanStudentTxn(rows)
		if scanErr != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan deleted student transaction", scanErr)
		}
		deleted = append(deleted, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating deleted student transactions", err)
	}

	balanceQuery := `
		UPDATE student_balances
		SET balance = balance + $2, last_updated = $3
		WHERE student_id = $1;
	`
	for _, m := range deleted {
		// Removing a CREDIT takes the amount back out; removing a DEBIT puts
		// it back in.
		delta := m.Amount
		if m.TxnType == string(domain.StudentCredit) {
			delta = delta.Neg()
		}
		if _, err := tx.Exec(ctx, balanceQuery, m.StudentID, delta, asOf); err != nil {
			return nil, apperrors.NewAppError(500, "failed to move balance back for student "+m.StudentID, err)
		}
	}

	return mapping.ToDomainStudentTransactionSlice(deleted), nil
}

// ReplaceBalance overwrites the materialized balance for one student.
func (r *PgxStudentRepository) ReplaceBalance(ctx context.Context, studentID string, balance decimal.Decimal, asOf time.Time) error {
	return replaceStudentBalance(ctx, r.Pool, studentID, balance, asOf)
}

// ReplaceBalanceInTx is ReplaceBalance inside the caller's transaction.
func (r *PgxStudentRepository) ReplaceBalanceInTx(ctx context.Context, tx pgx.Tx, studentID string, balance decimal.Decimal, asOf time.Time) error {
	return replaceStudentBalance(ctx, tx, studentID, balance, asOf)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func replaceStudentBalance(ctx context.Context, db execer, studentID string, balance decimal.Decimal, asOf time.Time) error {
	query := `
		INSERT INTO student_balances (student_id, balance, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE SET
			balance = EXCLUDED.balance,
			last_updated = EXCLUDED.last_updated;
	`
	if _, err := db.Exec(ctx, query, studentID, balance, asOf); err != nil {
		return fmt.Errorf("failed to replace balance for student %s: %w", studentID, err)
	}
	return nil
}
