package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	"github.com/openedu/school_ledger_app/internal/models"
	"github.com/openedu/school_ledger_app/internal/utils/mapping"
)

type PgxEnrollmentRepository struct {
	BaseRepository
}

// newPgxEnrollmentRepository creates a new repository for fee structures, rooms and enrollments.
func newPgxEnrollmentRepository(pool *pgxpool.Pool) portsrepo.EnrollmentRepositoryFacade {
	return &PgxEnrollmentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.EnrollmentRepositoryFacade = (*PgxEnrollmentRepository)(nil)

// FindFeeStructure retrieves the fee amount for an exact (kind, term, year)
// triple. No fuzzy fallback: a missing structure is ErrNotFound and posting
// must fail rather than charge zero.
func (r *PgxEnrollmentRepository) FindFeeStructure(ctx context.Context, kind domain.FeeKind, term, academicYear string) (*domain.FeeStructure, error) {
	query := `
		SELECT fee_structure_id, kind, term, academic_year, amount, currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM fee_structures
		WHERE kind = $1 AND term = $2 AND academic_year = $3;
	`
	var m models.FeeStructure
	err := r.Pool.QueryRow(ctx, query, string(kind), term, academicYear).Scan(
		&m.FeeStructureID,
		&m.Kind,
		&m.Term,
		&m.AcademicYear,
		&m.Amount,
		&m.CurrencyCode,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: fee structure %s/%s/%s", apperrors.ErrNotFound, kind, term, academicYear)
		}
		return nil, fmt.Errorf("failed to find fee structure %s/%s/%s: %w", kind, term, academicYear, err)
	}

	d := mapping.ToDomainFeeStructure(m)
	return &d, nil
}

// SaveFeeStructure inserts a new fee structure.
func (r *PgxEnrollmentRepository) SaveFeeStructure(ctx context.Context, fee domain.FeeStructure) error {
	m := mapping.ToModelFeeStructure(fee)

	query := `
		INSERT INTO fee_structures (fee_structure_id, kind, term, academic_year, amount, currency_code, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.FeeStructureID,
		m.Kind,
		m.Term,
		m.AcademicYear,
		m.Amount,
		m.CurrencyCode,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: fee structure %s/%s/%s already exists", apperrors.ErrDuplicate, m.Kind, m.Term, m.AcademicYear)
		}
		return fmt.Errorf("failed to save fee structure %s: %w", m.FeeStructureID, err)
	}
	return nil
}

// SaveRoom inserts a new room.
func (r *PgxEnrollmentRepository) SaveRoom(ctx context.Context, room domain.Room) error {
	query := `
		INSERT INTO rooms (room_id, name, capacity, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		room.RoomID,
		room.Name,
		room.Capacity,
		room.CreatedAt,
		room.CreatedBy,
		room.LastUpdatedAt,
		room.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: room %s already exists", apperrors.ErrDuplicate, room.RoomID)
		}
		return fmt.Errorf("failed to save room %s: %w", room.RoomID, err)
	}
	return nil
}

// FindRoomByID retrieves a room.
func (r *PgxEnrollmentRepository) FindRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	query := `
		SELECT room_id, name, capacity, created_at, created_by, last_updated_at, last_updated_by
		FROM rooms
		WHERE room_id = $1;
	`
	var m models.Room
	err := r.Pool.QueryRow(ctx, query, roomID).Scan(
		&m.RoomID,
		&m.Name,
		&m.Capacity,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room %s: %w", roomID, err)
	}

	d := mapping.ToDomainRoom(m)
	return &d, nil
}

// LockRoomForUpdate row-locks a room and counts its posted enrollments,
// inside the caller's transaction. Racing capacity checks serialize on the
// room row.
func (r *PgxEnrollmentRepository) LockRoomForUpdate(ctx context.Context, tx pgx.Tx, roomID string) (*domain.Room, int, error) {
	lockQuery := `
		SELECT room_id, name, capacity, created_at, created_by, last_updated_at, last_updated_by
		FROM rooms
		WHERE room_id = $1
		FOR UPDATE;
	`
	var m models.Room
	err := tx.QueryRow(ctx, lockQuery, roomID).Scan(
		&m.RoomID,
		&m.Name,
		&m.Capacity,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, fmt.Errorf("%w: room %s", apperrors.ErrNotFound, roomID)
		}
		return nil, 0, fmt.Errorf("failed to lock room %s: %w", roomID, err)
	}

	countQuery := `SELECT COUNT(*) FROM enrollments WHERE room_id = $1 AND status = 'POSTED';`
	var count int
	if err := tx.QueryRow(ctx, countQuery, roomID).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments for room %s: %w", roomID, err)
	}

	d := mapping.ToDomainRoom(m)
	return &d, count, nil
}

// FindEnrollment retrieves a student's enrollment for a term/year, if any.
func (r *PgxEnrollmentRepository) FindEnrollment(ctx context.Context, studentID, term, academicYear string) (*domain.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1 AND term = $2 AND academic_year = $3 AND status = 'POSTED';
	`
	return r.queryEnrollment(ctx, query, studentID, term, academicYear)
}

// FindEnrollmentByID retrieves an enrollment by ID.
func (r *PgxEnrollmentRepository) FindEnrollmentByID(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE enrollment_id = $1;
	`
	return r.queryEnrollment(ctx, query, enrollmentID)
}

// FindEnrollmentByJournalID retrieves the enrollment backed by the given
// journal, if any. Either the tuition or the boarding journal matches.
func (r *PgxEnrollmentRepository) FindEnrollmentByJournalID(ctx context.Context, journalID string) (*domain.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE journal_id = $1 OR boarding_journal_id = $1;
	`
	return r.queryEnrollment(ctx, query, journalID)
}

const enrollmentColumns = `enrollment_id, student_id, room_id, term, academic_year, journal_id, boarding_journal_id, status, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxEnrollmentRepository) queryEnrollment(ctx context.Context, query string, args ...any) (*domain.Enrollment, error) {
	var m models.Enrollment
	var roomID, boardingJournalID sql.NullString
	err := r.Pool.QueryRow(ctx, query, args...).Scan(
		&m.EnrollmentID,
		&m.StudentID,
		&roomID,
		&m.Term,
		&m.AcademicYear,
		&m.JournalID,
		&boardingJournalID,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}
	if roomID.Valid {
		m.RoomID = &roomID.String
	}
	if boardingJournalID.Valid {
		m.BoardingJournalID = &boardingJournalID.String
	}

	d := mapping.ToDomainEnrollment(m)
	return &d, nil
}

// SaveEnrollmentInTx inserts an enrollment inside the caller's transaction.
func (r *PgxEnrollmentRepository) SaveEnrollmentInTx(ctx context.Context, tx pgx.Tx, enrollment domain.Enrollment) error {
	m := mapping.ToModelEnrollment(enrollment)

	query := `
		INSERT INTO enrollments (enrollment_id, student_id, room_id, term, academic_year, journal_id, boarding_journal_id, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.EnrollmentID,
		m.StudentID,
		m.RoomID,
		m.Term,
		m.AcademicYear,
		m.JournalID,
		m.BoardingJournalID,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: student %s is already enrolled for %s %s", apperrors.ErrDuplicate, m.StudentID, m.Term, m.AcademicYear)
		}
		return apperrors.NewAppError(500, "failed to insert enrollment "+m.EnrollmentID, err)
	}
	return nil
}

// UpdateEnrollmentStatusInTx updates an enrollment's status inside the caller's transaction.
func (r *PgxEnrollmentRepository) UpdateEnrollmentStatusInTx(ctx context.Context, tx pgx.Tx, enrollmentID string, status domain.EnrollmentStatus, updatedBy string) error {
	query := `
		UPDATE enrollments
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE enrollment_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, enrollmentID, string(status), time.Now().UTC(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for enrollment "+enrollmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("enrollment " + enrollmentID + " not found for update")
	}
	return nil
}

// DeleteEnrollmentInTx removes an enrollment row inside the caller's
// transaction. Only the grace-period cancel path uses this.
func (r *PgxEnrollmentRepository) DeleteEnrollmentInTx(ctx context.Context, tx pgx.Tx, enrollmentID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM enrollments WHERE enrollment_id = $1;`, enrollmentID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete enrollment "+enrollmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("enrollment " + enrollmentID + " not found for delete")
	}
	return nil
}
