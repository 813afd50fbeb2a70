package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/core/services"
)

type StudentLedgerServiceTestSuite struct {
	suite.Suite
	mockStudentRepo *MockStudentRepository
	mockJournalSvc  *MockJournalService
	service         portssvc.StudentLedgerSvcFacade
	ctx             context.Context

	student domain.Student
}

func (suite *StudentLedgerServiceTestSuite) SetupTest() {
	suite.mockStudentRepo = new(MockStudentRepository)
	suite.mockJournalSvc = new(MockJournalService)
	suite.service = services.NewStudentLedgerService(suite.mockStudentRepo, suite.mockJournalSvc, testGracePeriod)
	suite.ctx = context.Background()

	suite.student = domain.Student{
		StudentID: "stu-1",
		FullName:  "Amina Okello",
		IsActive:  true,
	}
}

func (suite *StudentLedgerServiceTestSuite) TestRecordInTx_Success() {
	input := portssvc.RecordStudentTxnInput{
		StudentID:    suite.student.StudentID,
		TxnType:      domain.StudentDebit,
		Amount:       decimal.NewFromInt(500),
		Description:  "Tuition Term 1",
		Term:         "T1",
		AcademicYear: "2026",
		JournalID:    "jrn-1",
		ActorID:      "user-1",
	}

	suite.mockStudentRepo.On("FindStudentByID", suite.ctx, "stu-1").Return(&suite.student, nil).Once()
	suite.mockStudentRepo.On("RecordTransactionInTx", suite.ctx, mock.Anything, mock.MatchedBy(func(txn domain.StudentTransaction) bool {
		return txn.StudentID == "stu-1" && txn.TxnType == domain.StudentDebit &&
			txn.Amount.Equal(input.Amount) && txn.JournalID == "jrn-1"
	})).Return(nil).Once()

	txn, err := suite.service.RecordInTx(suite.ctx, nil, input)

	suite.Require().NoError(err)
	suite.NotEmpty(txn.TransactionID)
	suite.mockStudentRepo.AssertExpectations(suite.T())
}

func (suite *StudentLedgerServiceTestSuite) TestRecordInTx_NonPositiveAmount() {
	input := portssvc.RecordStudentTxnInput{
		StudentID: "stu-1",
		TxnType:   domain.StudentDebit,
		Amount:    decimal.Zero,
		JournalID: "jrn-1",
	}

	_, err := suite.service.RecordInTx(suite.ctx, nil, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockStudentRepo.AssertNotCalled(suite.T(), "RecordTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StudentLedgerServiceTestSuite) TestRecordInTx_MissingJournal() {
	input := portssvc.RecordStudentTxnInput{
		StudentID: "stu-1",
		TxnType:   domain.StudentCredit,
		Amount:    decimal.NewFromInt(100),
	}

	_, err := suite.service.RecordInTx(suite.ctx, nil, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *StudentLedgerServiceTestSuite) TestRecordInTx_InactiveStudent() {
	inactive := suite.student
	inactive.IsActive = false
	input := portssvc.RecordStudentTxnInput{
		StudentID: "stu-1",
		TxnType:   domain.StudentDebit,
		Amount:    decimal.NewFromInt(100),
		JournalID: "jrn-1",
	}

	suite.mockStudentRepo.On("FindStudentByID", suite.ctx, "stu-1").Return(&inactive, nil).Once()

	_, err := suite.service.RecordInTx(suite.ctx, nil, input)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPreconditionFailed)
	suite.mockStudentRepo.AssertNotCalled(suite.T(), "RecordTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StudentLedgerServiceTestSuite) TestReverse_Success() {
	amount := decimal.NewFromInt(500)
	original := &domain.StudentTransaction{
		TransactionID: "txn-1",
		StudentID:     "stu-1",
		TxnType:       domain.StudentDebit,
		Amount:        amount,
		Description:   "Tuition Term 1",
		Term:          "T1",
		AcademicYear:  "2026",
		JournalID:     "jrn-1",
		AuditFields:   domain.AuditFields{CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	reversingJournal := &domain.Journal{JournalID: "jrn-2", Status: domain.Posted}

	suite.mockStudentRepo.On("FindTransactionByID", suite.ctx, "txn-1").Return(original, nil).Once()
	suite.mockStudentRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockStudentRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil).Once()
	suite.mockJournalSvc.On("ReverseInTx", suite.ctx, mock.Anything, "jrn-1", "user-1").Return(reversingJournal, nil).Once()
	suite.mockStudentRepo.On("RecordTransactionInTx", suite.ctx, mock.Anything, mock.MatchedBy(func(txn domain.StudentTransaction) bool {
		return txn.TxnType == domain.StudentCredit &&
			txn.Amount.Equal(amount) &&
			txn.JournalID == "jrn-2" &&
			txn.ReversesTransactionID != nil && *txn.ReversesTransactionID == "txn-1"
	})).Return(nil).Once()
	suite.mockStudentRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	compensating, err := suite.service.Reverse(suite.ctx, "txn-1", "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StudentCredit, compensating.TxnType)
	suite.Equal("stu-1", compensating.StudentID)
	suite.mockStudentRepo.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *StudentLedgerServiceTestSuite) TestReverse_PastGraceWindow() {
	original := &domain.StudentTransaction{
		TransactionID: "txn-1",
		StudentID:     "stu-1",
		TxnType:       domain.StudentDebit,
		Amount:        decimal.NewFromInt(500),
		JournalID:     "jrn-1",
		AuditFields:   domain.AuditFields{CreatedAt: time.Now().UTC().Add(-testGracePeriod - time.Hour)},
	}

	suite.mockStudentRepo.On("FindTransactionByID", suite.ctx, "txn-1").Return(original, nil).Once()

	_, err := suite.service.Reverse(suite.ctx, "txn-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrGracePeriodExpired)
	suite.mockStudentRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "ReverseInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StudentLedgerServiceTestSuite) TestReverse_JournalAlreadyReversed() {
	original := &domain.StudentTransaction{
		TransactionID: "txn-1",
		StudentID:     "stu-1",
		TxnType:       domain.StudentDebit,
		Amount:        decimal.NewFromInt(500),
		JournalID:     "jrn-1",
		AuditFields:   domain.AuditFields{CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}

	suite.mockStudentRepo.On("FindTransactionByID", suite.ctx, "txn-1").Return(original, nil).Once()
	suite.mockStudentRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockStudentRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil).Once()
	suite.mockJournalSvc.On("ReverseInTx", suite.ctx, mock.Anything, "jrn-1", "user-1").
		Return(nil, apperrors.ErrPreconditionFailed).Once()

	_, err := suite.service.Reverse(suite.ctx, "txn-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPreconditionFailed)
	suite.mockStudentRepo.AssertNotCalled(suite.T(), "RecordTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStudentRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *StudentLedgerServiceTestSuite) TestRecalculate_OverwritesBalance() {
	sum := decimal.RequireFromString("-250.00")

	suite.mockStudentRepo.On("FindStudentByID", suite.ctx, "stu-1").Return(&suite.student, nil).Once()
	suite.mockStudentRepo.On("SumTransactions", suite.ctx, "stu-1").Return(sum, nil).Once()
	suite.mockStudentRepo.On("ReplaceBalance", suite.ctx, "stu-1", sum, mock.AnythingOfType("time.Time")).Return(nil).Once()

	balance, err := suite.service.Recalculate(suite.ctx, "stu-1")

	suite.Require().NoError(err)
	suite.True(balance.Balance.Equal(sum))
	suite.mockStudentRepo.AssertExpectations(suite.T())
}

func (suite *StudentLedgerServiceTestSuite) TestGetBalance_ZeroWhenNoRow() {
	suite.mockStudentRepo.On("FindStudentByID", suite.ctx, "stu-1").Return(&suite.student, nil).Once()
	suite.mockStudentRepo.On("FindBalance", suite.ctx, "stu-1").
		Return(nil, apperrors.NewNotFoundError("no balance row")).Once()

	balance, err := suite.service.GetBalance(suite.ctx, "stu-1")

	suite.Require().NoError(err)
	suite.Equal("stu-1", balance.StudentID)
	suite.True(balance.Balance.IsZero())
}

func (suite *StudentLedgerServiceTestSuite) TestGetBalance_UnknownStudent() {
	suite.mockStudentRepo.On("FindStudentByID", suite.ctx, "stu-404").
		Return(nil, apperrors.NewNotFoundError("student not found")).Once()

	_, err := suite.service.GetBalance(suite.ctx, "stu-404")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockStudentRepo.AssertNotCalled(suite.T(), "FindBalance", mock.Anything, mock.Anything)
}

func TestStudentLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StudentLedgerServiceTestSuite))
}
