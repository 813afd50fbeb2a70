package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryWithTx = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindJournalByReference(ctx context.Context, reference string) (*domain.Journal, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		val := args.Get(1).(string)
		token = &val
	}
	return args.Get(0).([]domain.Journal), token, args.Error(2)
}

func (m *MockJournalRepository) SaveJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, lines []domain.JournalLine) error {
	args := m.Called(ctx, tx, journal, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteJournalInTx(ctx context.Context, tx pgx.Tx, journalID string) error {
	args := m.Called(ctx, tx, journalID)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateJournalStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, journalID string, status domain.JournalStatus, reversingJournalID *string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, journalID, status, reversingJournalID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockJournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		val := args.Get(1).(string)
		token = &val
	}
	return args.Get(0).([]domain.JournalLine), token, args.Error(2)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasJournalLines(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

// --- Mock BalanceRepository ---

type MockBalanceRepository struct {
	mock.Mock
}

var _ portsrepo.BalanceRepositoryFacade = (*MockBalanceRepository)(nil)

func (m *MockBalanceRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockBalanceRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockBalanceRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockBalanceRepository) FindBalancesByAccountID(ctx context.Context, accountID string) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceRepository) FindAllBalances(ctx context.Context) ([]domain.AccountBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceRepository) AggregateFromLines(ctx context.Context) ([]domain.AccountBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceRepository) ApplyDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]map[string]decimal.Decimal, asOf time.Time) error {
	args := m.Called(ctx, tx, deltas, asOf)
	return args.Error(0)
}

func (m *MockBalanceRepository) RebuildAllInTx(ctx context.Context, tx pgx.Tx) (int, error) {
	args := m.Called(ctx, tx)
	return args.Int(0), args.Error(1)
}

// --- Mock StudentRepository ---

type MockStudentRepository struct {
	mock.Mock
}

var _ portsrepo.StudentRepositoryFacade = (*MockStudentRepository)(nil)

func (m *MockStudentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockStudentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStudentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStudentRepository) FindStudentByID(ctx context.Context, studentID string) (*domain.Student, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.StudentTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentTransaction), args.Error(1)
}

func (m *MockStudentRepository) FindTransactionByJournalID(ctx context.Context, journalID string) (*domain.StudentTransaction, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentTransaction), args.Error(1)
}

func (m *MockStudentRepository) ListTransactionsByStudentID(ctx context.Context, studentID string, limit int, nextToken *string) ([]domain.StudentTransaction, *string, error) {
	args := m.Called(ctx, studentID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		val := args.Get(1).(string)
		token = &val
	}
	return args.Get(0).([]domain.StudentTransaction), token, args.Error(2)
}

func (m *MockStudentRepository) FindBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentBalance), args.Error(1)
}

func (m *MockStudentRepository) FindBalanceForUpdate(ctx context.Context, tx pgx.Tx, studentID string) (*domain.StudentBalance, error) {
	args := m.Called(ctx, tx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentBalance), args.Error(1)
}

func (m *MockStudentRepository) SumTransactions(ctx context.Context, studentID string) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStudentRepository) ListStudentIDsWithTransactions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStudentRepository) AggregateAllBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockStudentRepository) ListAllBalances(ctx context.Context) ([]domain.StudentBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudentBalance), args.Error(1)
}

func (m *MockStudentRepository) SaveStudent(ctx context.Context, student domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.StudentTransaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockStudentRepository) ReplaceBalance(ctx context.Context, studentID string, balance decimal.Decimal, asOf time.Time) error {
	args := m.Called(ctx, studentID, balance, asOf)
	return args.Error(0)
}

func (m *MockStudentRepository) ReplaceBalanceInTx(ctx context.Context, tx pgx.Tx, studentID string, balance decimal.Decimal, asOf time.Time) error {
	args := m.Called(ctx, tx, studentID, balance, asOf)
	return args.Error(0)
}

func (m *MockStudentRepository) DeleteTransactionsByJournalInTx(ctx context.Context, tx pgx.Tx, journalID string, asOf time.Time) ([]domain.StudentTransaction, error) {
	args := m.Called(ctx, tx, journalID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudentTransaction), args.Error(1)
}

// --- Mock EnrollmentRepository ---

type MockEnrollmentRepository struct {
	mock.Mock
}

var _ portsrepo.EnrollmentRepositoryFacade = (*MockEnrollmentRepository)(nil)

func (m *MockEnrollmentRepository) FindFeeStructure(ctx context.Context, kind domain.FeeKind, term, academicYear string) (*domain.FeeStructure, error) {
	args := m.Called(ctx, kind, term, academicYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeStructure), args.Error(1)
}

func (m *MockEnrollmentRepository) SaveFeeStructure(ctx context.Context, fee domain.FeeStructure) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) FindRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockEnrollmentRepository) FindEnrollment(ctx context.Context, studentID, term, academicYear string) (*domain.Enrollment, error) {
	args := m.Called(ctx, studentID, term, academicYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) FindEnrollmentByID(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) FindEnrollmentByJournalID(ctx context.Context, journalID string) (*domain.Enrollment, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) SaveRoom(ctx context.Context, room domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) LockRoomForUpdate(ctx context.Context, tx pgx.Tx, roomID string) (*domain.Room, int, error) {
	args := m.Called(ctx, tx, roomID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*domain.Room), args.Int(1), args.Error(2)
}

func (m *MockEnrollmentRepository) SaveEnrollmentInTx(ctx context.Context, tx pgx.Tx, enrollment domain.Enrollment) error {
	args := m.Called(ctx, tx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) UpdateEnrollmentStatusInTx(ctx context.Context, tx pgx.Tx, enrollmentID string, status domain.EnrollmentStatus, updatedBy string) error {
	args := m.Called(ctx, tx, enrollmentID, status, updatedBy)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) DeleteEnrollmentInTx(ctx context.Context, tx pgx.Tx, enrollmentID string) error {
	args := m.Called(ctx, tx, enrollmentID)
	return args.Error(0)
}

// --- Mock JournalService (as used by composing services) ---

type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) Post(ctx context.Context, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) PostInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, lines []domain.JournalLine) error {
	args := m.Called(ctx, tx, journal, lines)
	return args.Error(0)
}

func (m *MockJournalService) Delete(ctx context.Context, journalID string, actorID string) ([]domain.BalanceDelta, error) {
	args := m.Called(ctx, journalID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceDelta), args.Error(1)
}

func (m *MockJournalService) DeleteInTx(ctx context.Context, tx pgx.Tx, journalID string) ([]domain.BalanceDelta, error) {
	args := m.Called(ctx, tx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceDelta), args.Error(1)
}

func (m *MockJournalService) Reverse(ctx context.Context, journalID string, actorID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) ReverseInTx(ctx context.Context, tx pgx.Tx, journalID string, actorID string) (*domain.Journal, error) {
	args := m.Called(ctx, tx, journalID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) GetByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) FindByReference(ctx context.Context, reference string) (*domain.Journal, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) List(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalsResponse), args.Error(1)
}

func (m *MockJournalService) ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLinesResponse), args.Error(1)
}

// --- Mock StudentLedgerService ---

type MockStudentLedgerService struct {
	mock.Mock
}

var _ portssvc.StudentLedgerSvcFacade = (*MockStudentLedgerService)(nil)

func (m *MockStudentLedgerService) CreateStudent(ctx context.Context, req dto.CreateStudentRequest, creatorID string) (*domain.Student, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentLedgerService) GetStudent(ctx context.Context, studentID string) (*domain.Student, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentLedgerService) RecordInTx(ctx context.Context, tx pgx.Tx, input portssvc.RecordStudentTxnInput) (*domain.StudentTransaction, error) {
	args := m.Called(ctx, tx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentTransaction), args.Error(1)
}

func (m *MockStudentLedgerService) Reverse(ctx context.Context, transactionID string, actorID string) (*domain.StudentTransaction, error) {
	args := m.Called(ctx, transactionID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentTransaction), args.Error(1)
}

func (m *MockStudentLedgerService) Recalculate(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentBalance), args.Error(1)
}

func (m *MockStudentLedgerService) GetBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentBalance), args.Error(1)
}

func (m *MockStudentLedgerService) ListTransactions(ctx context.Context, studentID string, params dto.ListStudentTransactionsParams) (*dto.ListStudentTransactionsResponse, error) {
	args := m.Called(ctx, studentID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListStudentTransactionsResponse), args.Error(1)
}

// --- Mock ExchangeRateService ---

type MockExchangeRateService struct {
	mock.Mock
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

func (m *MockExchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) GetEffectiveRate(ctx context.Context, from, to string, on time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, from, to, on)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- Mock AuditLogger ---

type MockAuditLogger struct {
	mock.Mock
}

var _ portssvc.AuditLogger = (*MockAuditLogger)(nil)

func (m *MockAuditLogger) Record(ctx context.Context, event portssvc.AuditEvent) {
	m.Called(ctx, event)
}

// --- Mock BalanceService ---

type MockBalanceService struct {
	mock.Mock
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceService)(nil)

func (m *MockBalanceService) GetBalances(ctx context.Context, accountID string) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceService) RecomputeAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBalanceService) CheckDrift(ctx context.Context) ([]dto.AccountDrift, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.AccountDrift), args.Error(1)
}
