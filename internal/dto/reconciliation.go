package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountDrift is one (account, currency) pair whose materialized balance
// disagrees with the recomputed value.
type AccountDrift struct {
	AccountID    string          `json:"accountID"`
	CurrencyCode string          `json:"currencyCode"`
	Materialized decimal.Decimal `json:"materialized"`
	Recomputed   decimal.Decimal `json:"recomputed"`
	Difference   decimal.Decimal `json:"difference"`
}

// StudentDrift is one student whose materialized balance disagrees with the
// sub-ledger recompute.
type StudentDrift struct {
	StudentID    string          `json:"studentID"`
	Materialized decimal.Decimal `json:"materialized"`
	Recomputed   decimal.Decimal `json:"recomputed"`
	Difference   decimal.Decimal `json:"difference"`
}

// IntegrityReport is the result of a drift check. Clean means both lists are
// empty.
type IntegrityReport struct {
	CheckedAt     time.Time      `json:"checkedAt"`
	AccountDrifts []AccountDrift `json:"accountDrifts"`
	StudentDrifts []StudentDrift `json:"studentDrifts"`
}

// Clean reports whether no drift was found.
func (r IntegrityReport) Clean() bool {
	return len(r.AccountDrifts) == 0 && len(r.StudentDrifts) == 0
}

// RepairResult summarizes a full recompute run.
type RepairResult struct {
	StartedAt            time.Time `json:"startedAt"`
	FinishedAt           time.Time `json:"finishedAt"`
	AccountRowsRewritten int       `json:"accountRowsRewritten"`
	StudentsRecalculated int       `json:"studentsRecalculated"`
}
