package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/core/services"
	"github.com/openedu/school_ledger_app/internal/dto"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockBalanceSvc  *MockBalanceService
	mockStudentRepo *MockStudentRepository
	service         portssvc.ReconciliationSvcFacade
	ctx             context.Context
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockBalanceSvc = new(MockBalanceService)
	suite.mockStudentRepo = new(MockStudentRepository)
	suite.service = services.NewReconciliationService(suite.mockBalanceSvc, suite.mockStudentRepo)
	suite.ctx = context.Background()
}

func (suite *ReconciliationServiceTestSuite) TestCheckIntegrity_Clean() {
	suite.mockBalanceSvc.On("CheckDrift", suite.ctx).Return([]dto.AccountDrift{}, nil).Once()
	suite.mockStudentRepo.On("ListAllBalances", suite.ctx).Return([]domain.StudentBalance{
		{StudentID: "stu-1", Balance: decimal.NewFromInt(-500)},
	}, nil).Once()
	suite.mockStudentRepo.On("AggregateAllBalances", suite.ctx).Return(map[string]decimal.Decimal{
		"stu-1": decimal.NewFromInt(-500),
	}, nil).Once()

	report, err := suite.service.CheckIntegrity(suite.ctx)

	suite.Require().NoError(err)
	suite.True(report.Clean())
	suite.Empty(report.AccountDrifts)
	suite.Empty(report.StudentDrifts)
}

func (suite *ReconciliationServiceTestSuite) TestCheckIntegrity_ReportsAccountDrift() {
	drift := dto.AccountDrift{
		AccountID:    "acc-cash",
		CurrencyCode: "USD",
		Materialized: decimal.NewFromInt(110),
		Recomputed:   decimal.NewFromInt(100),
		Difference:   decimal.NewFromInt(10),
	}
	// CheckDrift signals drift with the sentinel; the report still carries
	// the rows rather than failing the check.
	suite.mockBalanceSvc.On("CheckDrift", suite.ctx).
		Return([]dto.AccountDrift{drift}, apperrors.ErrIntegrityDrift).Once()
	suite.mockStudentRepo.On("ListAllBalances", suite.ctx).Return([]domain.StudentBalance{}, nil).Once()
	suite.mockStudentRepo.On("AggregateAllBalances", suite.ctx).Return(map[string]decimal.Decimal{}, nil).Once()

	report, err := suite.service.CheckIntegrity(suite.ctx)

	suite.Require().NoError(err)
	suite.False(report.Clean())
	suite.Require().Len(report.AccountDrifts, 1)
	suite.Equal("acc-cash", report.AccountDrifts[0].AccountID)
}

func (suite *ReconciliationServiceTestSuite) TestCheckIntegrity_ReportsStudentDrift() {
	suite.mockBalanceSvc.On("CheckDrift", suite.ctx).Return([]dto.AccountDrift{}, nil).Once()
	suite.mockStudentRepo.On("ListAllBalances", suite.ctx).Return([]domain.StudentBalance{
		{StudentID: "stu-1", Balance: decimal.NewFromInt(-450)},
	}, nil).Once()
	suite.mockStudentRepo.On("AggregateAllBalances", suite.ctx).Return(map[string]decimal.Decimal{
		"stu-1": decimal.NewFromInt(-500),
	}, nil).Once()

	report, err := suite.service.CheckIntegrity(suite.ctx)

	suite.Require().NoError(err)
	suite.Require().Len(report.StudentDrifts, 1)
	d := report.StudentDrifts[0]
	suite.Equal("stu-1", d.StudentID)
	suite.True(d.Difference.Equal(decimal.NewFromInt(50)))
}

func (suite *ReconciliationServiceTestSuite) TestCheckIntegrity_MissingMaterializedRow() {
	// Sub-ledger history with no balance row at all is drift by the full
	// recomputed amount.
	suite.mockBalanceSvc.On("CheckDrift", suite.ctx).Return([]dto.AccountDrift{}, nil).Once()
	suite.mockStudentRepo.On("ListAllBalances", suite.ctx).Return([]domain.StudentBalance{}, nil).Once()
	suite.mockStudentRepo.On("AggregateAllBalances", suite.ctx).Return(map[string]decimal.Decimal{
		"stu-2": decimal.NewFromInt(-300),
	}, nil).Once()

	report, err := suite.service.CheckIntegrity(suite.ctx)

	suite.Require().NoError(err)
	suite.Require().Len(report.StudentDrifts, 1)
	d := report.StudentDrifts[0]
	suite.Equal("stu-2", d.StudentID)
	suite.True(d.Materialized.IsZero())
	suite.True(d.Recomputed.Equal(decimal.NewFromInt(-300)))
}

func (suite *ReconciliationServiceTestSuite) TestCheckIntegrity_ToleranceAbsorbsRounding() {
	suite.mockBalanceSvc.On("CheckDrift", suite.ctx).Return([]dto.AccountDrift{}, nil).Once()
	suite.mockStudentRepo.On("ListAllBalances", suite.ctx).Return([]domain.StudentBalance{
		{StudentID: "stu-1", Balance: decimal.RequireFromString("-500.005")},
	}, nil).Once()
	suite.mockStudentRepo.On("AggregateAllBalances", suite.ctx).Return(map[string]decimal.Decimal{
		"stu-1": decimal.NewFromInt(-500),
	}, nil).Once()

	report, err := suite.service.CheckIntegrity(suite.ctx)

	suite.Require().NoError(err)
	suite.True(report.Clean())
}

func (suite *ReconciliationServiceTestSuite) TestRepairAll_RebuildsBothLedgers() {
	suite.mockBalanceSvc.On("RecomputeAll", suite.ctx).Return(12, nil).Once()
	suite.mockStudentRepo.On("AggregateAllBalances", suite.ctx).Return(map[string]decimal.Decimal{
		"stu-1": decimal.NewFromInt(-500),
		"stu-2": decimal.NewFromInt(150),
	}, nil).Once()
	suite.mockStudentRepo.On("ListAllBalances", suite.ctx).Return([]domain.StudentBalance{
		{StudentID: "stu-1", Balance: decimal.NewFromInt(-450)},
		{StudentID: "stu-3", Balance: decimal.NewFromInt(75)}, // No transactions left
	}, nil).Once()
	suite.mockStudentRepo.On("ReplaceBalance", suite.ctx, "stu-1", decimal.NewFromInt(-500), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStudentRepo.On("ReplaceBalance", suite.ctx, "stu-2", decimal.NewFromInt(150), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStudentRepo.On("ReplaceBalance", suite.ctx, "stu-3", decimal.Zero, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.RepairAll(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(12, result.AccountRowsRewritten)
	suite.Equal(3, result.StudentsRecalculated)
	suite.False(result.FinishedAt.Before(result.StartedAt))
	suite.mockStudentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRepairAll_Idempotent() {
	suite.mockBalanceSvc.On("RecomputeAll", suite.ctx).Return(12, nil).Twice()
	suite.mockStudentRepo.On("AggregateAllBalances", suite.ctx).Return(map[string]decimal.Decimal{
		"stu-1": decimal.NewFromInt(-500),
	}, nil).Twice()
	suite.mockStudentRepo.On("ListAllBalances", suite.ctx).Return([]domain.StudentBalance{
		{StudentID: "stu-1", Balance: decimal.NewFromInt(-500)},
	}, nil).Twice()
	suite.mockStudentRepo.On("ReplaceBalance", suite.ctx, "stu-1", decimal.NewFromInt(-500), mock.AnythingOfType("time.Time")).Return(nil).Twice()

	first, err := suite.service.RepairAll(suite.ctx)
	suite.Require().NoError(err)
	second, err := suite.service.RepairAll(suite.ctx)
	suite.Require().NoError(err)

	suite.Equal(first.AccountRowsRewritten, second.AccountRowsRewritten)
	suite.Equal(first.StudentsRecalculated, second.StudentsRecalculated)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
