package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/core/services"
)

type BalanceServiceTestSuite struct {
	suite.Suite
	mockBalanceRepo *MockBalanceRepository
	service         portssvc.BalanceSvcFacade
	ctx             context.Context
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockBalanceRepo = new(MockBalanceRepository)
	suite.service = services.NewBalanceService(suite.mockBalanceRepo)
	suite.ctx = context.Background()
}

func (suite *BalanceServiceTestSuite) TestRecomputeAll() {
	suite.mockBalanceRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockBalanceRepo.On("Rollback", suite.ctx, nil).Return(nil).Once()
	suite.mockBalanceRepo.On("RebuildAllInTx", suite.ctx, nil).Return(8, nil).Once()
	suite.mockBalanceRepo.On("Commit", suite.ctx, nil).Return(nil).Once()

	rows, err := suite.service.RecomputeAll(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(8, rows)
	suite.mockBalanceRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestCheckDrift_Clean() {
	balances := []domain.AccountBalance{
		{AccountID: "acc-cash", CurrencyCode: "USD", Balance: decimal.NewFromInt(100)},
	}
	suite.mockBalanceRepo.On("FindAllBalances", suite.ctx).Return(balances, nil).Once()
	suite.mockBalanceRepo.On("AggregateFromLines", suite.ctx).Return(balances, nil).Once()

	drifts, err := suite.service.CheckDrift(suite.ctx)

	suite.Require().NoError(err)
	suite.Empty(drifts)
}

func (suite *BalanceServiceTestSuite) TestCheckDrift_SignalsDrift() {
	suite.mockBalanceRepo.On("FindAllBalances", suite.ctx).Return([]domain.AccountBalance{
		{AccountID: "acc-cash", CurrencyCode: "USD", Balance: decimal.NewFromInt(110)},
	}, nil).Once()
	suite.mockBalanceRepo.On("AggregateFromLines", suite.ctx).Return([]domain.AccountBalance{
		{AccountID: "acc-cash", CurrencyCode: "USD", Balance: decimal.NewFromInt(100)},
	}, nil).Once()

	drifts, err := suite.service.CheckDrift(suite.ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIntegrityDrift)
	suite.Require().Len(drifts, 1)
	suite.True(drifts[0].Difference.Equal(decimal.NewFromInt(10)))
}

func (suite *BalanceServiceTestSuite) TestCheckDrift_OrphanMaterializedRow() {
	// A balance row with no journal lines behind it is drift too.
	suite.mockBalanceRepo.On("FindAllBalances", suite.ctx).Return([]domain.AccountBalance{
		{AccountID: "acc-ghost", CurrencyCode: "USD", Balance: decimal.NewFromInt(25)},
	}, nil).Once()
	suite.mockBalanceRepo.On("AggregateFromLines", suite.ctx).Return([]domain.AccountBalance{}, nil).Once()

	drifts, err := suite.service.CheckDrift(suite.ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIntegrityDrift)
	suite.Require().Len(drifts, 1)
	suite.Equal("acc-ghost", drifts[0].AccountID)
	suite.True(drifts[0].Recomputed.IsZero())
}

func (suite *BalanceServiceTestSuite) TestCheckDrift_WithinTolerance() {
	suite.mockBalanceRepo.On("FindAllBalances", suite.ctx).Return([]domain.AccountBalance{
		{AccountID: "acc-cash", CurrencyCode: "USD", Balance: decimal.RequireFromString("100.005")},
	}, nil).Once()
	suite.mockBalanceRepo.On("AggregateFromLines", suite.ctx).Return([]domain.AccountBalance{
		{AccountID: "acc-cash", CurrencyCode: "USD", Balance: decimal.NewFromInt(100)},
	}, nil).Once()

	drifts, err := suite.service.CheckDrift(suite.ctx)

	suite.Require().NoError(err)
	suite.Empty(drifts)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
