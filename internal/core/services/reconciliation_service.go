package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/utils/accounting"
)

// reconciliationService implements the scheduled integrity check and the
// operator repair command over both derived balance sets.
type reconciliationService struct {
	BaseService
	balanceSvc  portssvc.BalanceSvcFacade
	studentRepo repositories.StudentRepositoryFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(balanceSvc portssvc.BalanceSvcFacade, studentRepo repositories.StudentRepositoryFacade) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{balanceSvc: balanceSvc, studentRepo: studentRepo}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// CheckIntegrity compares every materialized balance against a fresh
// recompute. Drift is reported, never corrected here.
func (s *reconciliationService) CheckIntegrity(ctx context.Context) (*dto.IntegrityReport, error) {
	report := &dto.IntegrityReport{
		CheckedAt:     time.Now().UTC(),
		AccountDrifts: []dto.AccountDrift{},
		StudentDrifts: []dto.StudentDrift{},
	}

	accountDrifts, err := s.balanceSvc.CheckDrift(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrIntegrityDrift) {
		return nil, err
	}
	report.AccountDrifts = accountDrifts

	studentDrifts, err := s.checkStudentDrift(ctx)
	if err != nil {
		return nil, err
	}
	report.StudentDrifts = studentDrifts

	if !report.Clean() {
		s.GetLogger(ctx).Warn("Balance drift detected",
			"account_drifts", len(report.AccountDrifts),
			"student_drifts", len(report.StudentDrifts))
	} else {
		s.LogInfo(ctx, "Integrity check clean")
	}
	return report, nil
}

func (s *reconciliationService) checkStudentDrift(ctx context.Context) ([]dto.StudentDrift, error) {
	materialized, err := s.studentRepo.ListAllBalances(ctx)
	if err != nil {
		return nil, err
	}
	recomputed, err := s.studentRepo.AggregateAllBalances(ctx)
	if err != nil {
		return nil, err
	}

	drifts := []dto.StudentDrift{}
	seen := make(map[string]bool, len(materialized))
	for _, row := range materialized {
		seen[row.StudentID] = true
		want := recomputed[row.StudentID]
		diff := row.Balance.Sub(want)
		if diff.Abs().GreaterThanOrEqual(accounting.BalanceTolerance) {
			drifts = append(drifts, dto.StudentDrift{
				StudentID:    row.StudentID,
				Materialized: row.Balance,
				Recomputed:   want,
				Difference:   diff,
			})
		}
	}
	// Students with sub-ledger history but no materialized row drift by the
	// full recomputed amount.
	for studentID, want := range recomputed {
		if seen[studentID] || want.IsZero() {
			continue
		}
		drifts = append(drifts, dto.StudentDrift{
			StudentID:    studentID,
			Materialized: decimal.Zero,
			Recomputed:   want,
			Difference:   want.Neg(),
		})
	}
	return drifts, nil
}

// RepairAll rebuilds the account balance table from the journal lines and
// overwrites every student balance from the sub-ledger log. Idempotent.
func (s *reconciliationService) RepairAll(ctx context.Context) (*dto.RepairResult, error) {
	result := &dto.RepairResult{StartedAt: time.Now().UTC()}

	rewritten, err := s.balanceSvc.RecomputeAll(ctx)
	if err != nil {
		return nil, err
	}
	result.AccountRowsRewritten = rewritten

	recomputed, err := s.studentRepo.AggregateAllBalances(ctx)
	if err != nil {
		return nil, err
	}
	// Stale materialized rows for students with no remaining transactions
	// are zeroed rather than left behind.
	materialized, err := s.studentRepo.ListAllBalances(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range materialized {
		if _, ok := recomputed[row.StudentID]; !ok {
			recomputed[row.StudentID] = decimal.Zero
		}
	}

	now := time.Now().UTC()
	for studentID, balance := range recomputed {
		if err := s.studentRepo.ReplaceBalance(ctx, studentID, balance, now); err != nil {
			return nil, err
		}
		result.StudentsRecalculated++
	}

	result.FinishedAt = time.Now().UTC()
	s.LogInfo(ctx, "Derived balances rebuilt",
		"account_rows", result.AccountRowsRewritten,
		"students", result.StudentsRecalculated)
	return result, nil
}
