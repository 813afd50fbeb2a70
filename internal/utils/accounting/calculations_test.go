package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/utils/accounting"
)

func debitLine(accountID string, amount, currency string) domain.JournalLine {
	return domain.JournalLine{
		LineID:       "line-" + accountID,
		AccountID:    accountID,
		Debit:        decimal.RequireFromString(amount),
		CurrencyCode: currency,
	}
}

func creditLine(accountID string, amount, currency string) domain.JournalLine {
	return domain.JournalLine{
		LineID:       "line-" + accountID,
		AccountID:    accountID,
		Credit:       decimal.RequireFromString(amount),
		CurrencyCode: currency,
	}
}

func TestSignedAmount(t *testing.T) {
	testCases := []struct {
		name        string
		line        domain.JournalLine
		accountType domain.AccountType
		expected    string
	}{
		{"debit to asset increases", debitLine("a", "100", "USD"), domain.Asset, "100"},
		{"credit to asset decreases", creditLine("a", "100", "USD"), domain.Asset, "-100"},
		{"debit to expense increases", debitLine("a", "40", "USD"), domain.Expense, "40"},
		{"debit to liability decreases", debitLine("a", "100", "USD"), domain.Liability, "-100"},
		{"credit to revenue increases", creditLine("a", "500", "USD"), domain.Revenue, "500"},
		{"debit to revenue decreases", debitLine("a", "500", "USD"), domain.Revenue, "-500"},
		{"credit to equity increases", creditLine("a", "10", "USD"), domain.Equity, "10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := accounting.SignedAmount(tc.line, tc.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)), "got %s", got)
		})
	}
}

func TestSignedAmount_UnknownType(t *testing.T) {
	_, err := accounting.SignedAmount(debitLine("a", "1", "USD"), domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestValidateLine(t *testing.T) {
	assert.NoError(t, accounting.ValidateLine(debitLine("a", "100", "USD")))

	both := debitLine("a", "100", "USD")
	both.Credit = decimal.NewFromInt(100)
	assert.Error(t, accounting.ValidateLine(both), "both sides set")

	neither := domain.JournalLine{LineID: "line-a", CurrencyCode: "USD"}
	assert.Error(t, accounting.ValidateLine(neither), "neither side set")

	negative := domain.JournalLine{LineID: "line-a", Debit: decimal.NewFromInt(-5), CurrencyCode: "USD"}
	assert.Error(t, accounting.ValidateLine(negative))
}

func TestValidateEntryBalance(t *testing.T) {
	t.Run("balanced single currency", func(t *testing.T) {
		err := accounting.ValidateEntryBalance([]domain.JournalLine{
			debitLine("a", "500", "USD"),
			creditLine("b", "500", "USD"),
		})
		assert.NoError(t, err)
	})

	t.Run("unbalanced", func(t *testing.T) {
		err := accounting.ValidateEntryBalance([]domain.JournalLine{
			debitLine("a", "500", "USD"),
			creditLine("b", "499", "USD"),
		})
		assert.Error(t, err)
	})

	t.Run("residual inside tolerance", func(t *testing.T) {
		err := accounting.ValidateEntryBalance([]domain.JournalLine{
			debitLine("a", "100.00", "USD"),
			creditLine("b", "99.995", "USD"),
		})
		assert.NoError(t, err)
	})

	t.Run("residual at tolerance fails", func(t *testing.T) {
		err := accounting.ValidateEntryBalance([]domain.JournalLine{
			debitLine("a", "100.00", "USD"),
			creditLine("b", "99.99", "USD"),
		})
		assert.Error(t, err)
	})

	t.Run("balance holds per currency", func(t *testing.T) {
		err := accounting.ValidateEntryBalance([]domain.JournalLine{
			debitLine("a", "500", "USD"),
			creditLine("b", "500", "USD"),
			debitLine("c", "300", "KES"),
			creditLine("d", "300", "KES"),
		})
		assert.NoError(t, err)

		err = accounting.ValidateEntryBalance([]domain.JournalLine{
			debitLine("a", "500", "USD"),
			creditLine("b", "300", "KES"), // Totals match only across currencies
			debitLine("c", "300", "KES"),
			creditLine("d", "500", "USD"),
		})
		assert.NoError(t, err, "each currency balances independently")

		err = accounting.ValidateEntryBalance([]domain.JournalLine{
			debitLine("a", "500", "USD"),
			creditLine("b", "500", "KES"),
		})
		assert.Error(t, err, "cross-currency offsets do not balance")
	})

	t.Run("fewer than two lines", func(t *testing.T) {
		err := accounting.ValidateEntryBalance([]domain.JournalLine{debitLine("a", "1", "USD")})
		assert.Error(t, err)
	})
}

func TestEntryDeltas(t *testing.T) {
	types := map[string]domain.AccountType{
		"acc-recv":    domain.Asset,
		"acc-tuition": domain.Revenue,
	}
	lines := []domain.JournalLine{
		debitLine("acc-recv", "500", "USD"),
		creditLine("acc-tuition", "500", "USD"),
	}

	deltas, err := accounting.EntryDeltas(lines, types)
	require.NoError(t, err)

	assert.True(t, deltas["acc-recv"]["USD"].Equal(decimal.NewFromInt(500)))
	assert.True(t, deltas["acc-tuition"]["USD"].Equal(decimal.NewFromInt(500)))

	inverse := accounting.InvertDeltas(deltas)
	assert.True(t, inverse["acc-recv"]["USD"].Equal(decimal.NewFromInt(-500)))
	assert.True(t, inverse["acc-tuition"]["USD"].Equal(decimal.NewFromInt(-500)))
}

func TestEntryDeltas_AggregatesRepeatedAccounts(t *testing.T) {
	types := map[string]domain.AccountType{
		"acc-cash": domain.Asset,
		"acc-recv": domain.Asset,
	}
	lines := []domain.JournalLine{
		debitLine("acc-cash", "100", "USD"),
		debitLine("acc-cash", "50", "USD"),
		creditLine("acc-recv", "150", "USD"),
	}

	deltas, err := accounting.EntryDeltas(lines, types)
	require.NoError(t, err)
	assert.True(t, deltas["acc-cash"]["USD"].Equal(decimal.NewFromInt(150)))
	assert.True(t, deltas["acc-recv"]["USD"].Equal(decimal.NewFromInt(-150)))
}

func TestReversalDeltasCancelOut(t *testing.T) {
	// A compensating entry (debit and credit swapped) must contribute exactly
	// the inverse deltas, so post-then-reverse restores every balance.
	types := map[string]domain.AccountType{
		"acc-recv":    domain.Asset,
		"acc-tuition": domain.Revenue,
		"acc-waiver":  domain.Expense,
	}
	lines := []domain.JournalLine{
		debitLine("acc-recv", "500", "USD"),
		creditLine("acc-tuition", "450", "USD"),
		debitLine("acc-waiver", "50", "USD"),
		creditLine("acc-recv", "100", "USD"),
	}

	swapped := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		swapped[i] = l
		swapped[i].Debit, swapped[i].Credit = l.Credit, l.Debit
	}

	forward, err := accounting.EntryDeltas(lines, types)
	require.NoError(t, err)
	reversal, err := accounting.EntryDeltas(swapped, types)
	require.NoError(t, err)

	for accountID, byCurrency := range forward {
		for currency, delta := range byCurrency {
			net := delta.Add(reversal[accountID][currency])
			assert.True(t, net.IsZero(), "account %s %s nets to %s", accountID, currency, net)
		}
	}
}

// Walks an enrollment, a partial payment and a grace-period cancellation,
// accumulating deltas the way the balance ledger does, and checks the net
// position of each account.
func TestDeltas_EnrollPayCancelScenario(t *testing.T) {
	types := map[string]domain.AccountType{
		"acc-cash":    domain.Asset,
		"acc-recv":    domain.Asset,
		"acc-tuition": domain.Revenue,
	}

	balances := map[string]decimal.Decimal{}
	apply := func(deltas map[string]map[string]decimal.Decimal) {
		for accountID, byCurrency := range deltas {
			balances[accountID] = balances[accountID].Add(byCurrency["USD"])
		}
	}

	enrollment := []domain.JournalLine{
		debitLine("acc-recv", "500", "USD"),
		creditLine("acc-tuition", "500", "USD"),
	}
	enrollDeltas, err := accounting.EntryDeltas(enrollment, types)
	require.NoError(t, err)
	apply(enrollDeltas)

	payment := []domain.JournalLine{
		debitLine("acc-cash", "200", "USD"),
		creditLine("acc-recv", "200", "USD"),
	}
	payDeltas, err := accounting.EntryDeltas(payment, types)
	require.NoError(t, err)
	apply(payDeltas)

	assert.True(t, balances["acc-recv"].Equal(decimal.NewFromInt(300)))
	assert.True(t, balances["acc-cash"].Equal(decimal.NewFromInt(200)))
	assert.True(t, balances["acc-tuition"].Equal(decimal.NewFromInt(500)))

	// Cancelling the enrollment applies the inverse deltas; the payment
	// stays, leaving the student in credit.
	apply(accounting.InvertDeltas(enrollDeltas))

	assert.True(t, balances["acc-recv"].Equal(decimal.NewFromInt(-200)))
	assert.True(t, balances["acc-cash"].Equal(decimal.NewFromInt(200)))
	assert.True(t, balances["acc-tuition"].IsZero())
}

// fakeLedger keeps journals in memory and maintains incremental balances the
// way the balance recalculation service does: deltas applied on post and
// reverse, inverted deltas applied on hard delete. recompute folds
// SignedAmount over every surviving line from scratch.
type fakeLedger struct {
	t        *testing.T
	types    map[string]domain.AccountType
	journals map[string][]domain.JournalLine
	balances map[string]decimal.Decimal
}

func newFakeLedger(t *testing.T, types map[string]domain.AccountType) *fakeLedger {
	return &fakeLedger{
		t:        t,
		types:    types,
		journals: map[string][]domain.JournalLine{},
		balances: map[string]decimal.Decimal{},
	}
}

func (l *fakeLedger) apply(deltas map[string]map[string]decimal.Decimal) {
	for accountID, byCurrency := range deltas {
		l.balances[accountID] = l.balances[accountID].Add(byCurrency["USD"])
	}
}

func (l *fakeLedger) post(journalID string, lines []domain.JournalLine) {
	require.NoError(l.t, accounting.ValidateEntryBalance(lines))
	l.journals[journalID] = lines
	deltas, err := accounting.EntryDeltas(lines, l.types)
	require.NoError(l.t, err)
	l.apply(deltas)
}

func (l *fakeLedger) reverse(journalID, reversingID string) {
	original := l.journals[journalID]
	require.NotNil(l.t, original, "reversing unknown journal %s", journalID)
	swapped := make([]domain.JournalLine, len(original))
	for i, line := range original {
		swapped[i] = line
		swapped[i].Debit, swapped[i].Credit = line.Credit, line.Debit
	}
	l.post(reversingID, swapped)
}

func (l *fakeLedger) delete(journalID string) {
	lines := l.journals[journalID]
	require.NotNil(l.t, lines, "deleting unknown journal %s", journalID)
	delete(l.journals, journalID)
	deltas, err := accounting.EntryDeltas(lines, l.types)
	require.NoError(l.t, err)
	l.apply(accounting.InvertDeltas(deltas))
}

func (l *fakeLedger) recompute() map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{}
	for _, lines := range l.journals {
		for _, line := range lines {
			signed, err := accounting.SignedAmount(line, l.types[line.AccountID])
			require.NoError(l.t, err)
			totals[line.AccountID] = totals[line.AccountID].Add(signed)
		}
	}
	return totals
}

func (l *fakeLedger) assertConsistent(step string) {
	recomputed := l.recompute()
	for accountID := range l.types {
		incremental := l.balances[accountID]
		full := recomputed[accountID]
		assert.True(l.t, incremental.Equal(full),
			"after %s: account %s incremental %s != recomputed %s", step, accountID, incremental, full)
	}
}

// The incremental balance ledger and a from-scratch recomputation must agree
// after every post, reversal and hard delete, in any order.
func TestIncrementalBalancesMatchRecompute(t *testing.T) {
	types := map[string]domain.AccountType{
		"acc-cash":     domain.Asset,
		"acc-bank":     domain.Asset,
		"acc-recv":     domain.Asset,
		"acc-tuition":  domain.Revenue,
		"acc-boarding": domain.Revenue,
		"acc-waiver":   domain.Expense,
	}
	ledger := newFakeLedger(t, types)

	ledger.post("jrn-tuition", []domain.JournalLine{
		debitLine("acc-recv", "500", "USD"),
		creditLine("acc-tuition", "500", "USD"),
	})
	ledger.assertConsistent("tuition charge")

	ledger.post("jrn-boarding", []domain.JournalLine{
		debitLine("acc-recv", "300", "USD"),
		creditLine("acc-boarding", "300", "USD"),
	})
	ledger.assertConsistent("boarding charge")

	ledger.post("jrn-pay-1", []domain.JournalLine{
		debitLine("acc-cash", "400", "USD"),
		creditLine("acc-recv", "400", "USD"),
	})
	ledger.assertConsistent("cash payment")

	ledger.post("jrn-waiver", []domain.JournalLine{
		debitLine("acc-waiver", "100", "USD"),
		creditLine("acc-recv", "100", "USD"),
	})
	ledger.assertConsistent("fee waiver")

	ledger.reverse("jrn-waiver", "jrn-waiver-rev")
	ledger.assertConsistent("waiver reversal")

	ledger.post("jrn-pay-2", []domain.JournalLine{
		debitLine("acc-bank", "250", "USD"),
		creditLine("acc-recv", "250", "USD"),
	})
	ledger.assertConsistent("bank payment")

	ledger.delete("jrn-boarding")
	ledger.assertConsistent("boarding delete")

	ledger.reverse("jrn-pay-1", "jrn-pay-1-rev")
	ledger.assertConsistent("payment reversal")

	ledger.delete("jrn-pay-2")
	ledger.assertConsistent("bank payment delete")

	ledger.reverse("jrn-tuition", "jrn-tuition-rev")
	ledger.assertConsistent("tuition reversal")

	// Terminal position: every surviving journal is paired with its reversal
	// and the rest were hard deleted, so all accounts net to zero.
	assert.True(t, ledger.balances["acc-tuition"].IsZero())
	assert.True(t, ledger.balances["acc-waiver"].IsZero())
	assert.True(t, ledger.balances["acc-cash"].IsZero())
	assert.True(t, ledger.balances["acc-bank"].IsZero())
	assert.True(t, ledger.balances["acc-recv"].IsZero())
	assert.True(t, ledger.balances["acc-boarding"].IsZero())
}

func TestEntryDeltas_MissingAccountType(t *testing.T) {
	_, err := accounting.EntryDeltas([]domain.JournalLine{debitLine("acc-x", "1", "USD")}, map[string]domain.AccountType{})
	assert.Error(t, err)
}
