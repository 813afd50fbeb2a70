package accounting

import (
	"fmt"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance absorbs rounding noise when comparing per-currency debit
// and credit totals: a difference strictly below 0.01 of the currency unit is
// treated as balanced.
var BalanceTolerance = decimal.RequireFromString("0.01")

// SignedAmount applies the normal-balance sign rule to a journal line.
// DEBIT to ASSET/EXPENSE -> positive, CREDIT to ASSET/EXPENSE -> negative,
// DEBIT to LIABILITY/EQUITY/REVENUE -> negative, CREDIT -> positive.
// Both services and repositories go through this to keep the sign logic in
// one place.
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	amount := line.Amount()
	isDebit := line.IsDebit()

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			amount = amount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			amount = amount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
	return amount, nil
}

// ValidateLine checks the per-line invariant: amounts non-negative and
// exactly one of debit/credit non-zero.
func ValidateLine(line domain.JournalLine) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("line %s: debit and credit must be non-negative", line.LineID)
	}
	debitSet := line.Debit.IsPositive()
	creditSet := line.Credit.IsPositive()
	if debitSet == creditSet {
		return fmt.Errorf("line %s: exactly one of debit/credit must be non-zero", line.LineID)
	}
	return nil
}

// ValidateEntryBalance checks that for every currency present in the entry,
// total debits equal total credits within BalanceTolerance.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal must have at least two lines")
	}

	debits := make(map[string]decimal.Decimal)
	credits := make(map[string]decimal.Decimal)
	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return err
		}
		debits[line.CurrencyCode] = debits[line.CurrencyCode].Add(line.Debit)
		credits[line.CurrencyCode] = credits[line.CurrencyCode].Add(line.Credit)
	}

	for currency, debitSum := range debits {
		creditSum := credits[currency]
		if debitSum.Sub(creditSum).Abs().GreaterThanOrEqual(BalanceTolerance) {
			return fmt.Errorf("currency %s: debits sum is %s and credits sum is %s", currency, debitSum.String(), creditSum.String())
		}
	}
	for currency, creditSum := range credits {
		if _, seen := debits[currency]; !seen && creditSum.Abs().GreaterThanOrEqual(BalanceTolerance) {
			return fmt.Errorf("currency %s: credits sum is %s with no debits", currency, creditSum.String())
		}
	}

	return nil
}

// EntryDeltas aggregates the signed contribution of an entry's lines per
// (account, currency). The materializer adds these to the balance rows; the
// inverse is applied on delete.
func EntryDeltas(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]map[string]decimal.Decimal, error) {
	deltas := make(map[string]map[string]decimal.Decimal)
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", line.AccountID)
		}
		signed, err := SignedAmount(line, accountType)
		if err != nil {
			return nil, err
		}
		byCurrency, ok := deltas[line.AccountID]
		if !ok {
			byCurrency = make(map[string]decimal.Decimal)
			deltas[line.AccountID] = byCurrency
		}
		byCurrency[line.CurrencyCode] = byCurrency[line.CurrencyCode].Add(signed)
	}
	return deltas, nil
}

// InvertDeltas negates every delta, producing the reversal set for a deleted
// entry.
func InvertDeltas(deltas map[string]map[string]decimal.Decimal) map[string]map[string]decimal.Decimal {
	inverted := make(map[string]map[string]decimal.Decimal, len(deltas))
	for accountID, byCurrency := range deltas {
		inverted[accountID] = make(map[string]decimal.Decimal, len(byCurrency))
		for currency, delta := range byCurrency {
			inverted[accountID][currency] = delta.Neg()
		}
	}
	return inverted
}
