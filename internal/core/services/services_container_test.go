package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/core/services"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posting_rules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPostingRules_EmptyPathUsesDefaults(t *testing.T) {
	rules, err := services.LoadPostingRules("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPostingRules(), rules)
}

func TestLoadPostingRules_OverrideApplied(t *testing.T) {
	path := writeRulesFile(t, `[
		{"event": "PAYMENT_CASH", "debitAccountCode": "1010", "creditAccountCode": "1100", "journalRef": "PAYMENT", "studentSide": "CREDIT"}
	]`)

	rules, err := services.LoadPostingRules(path)
	require.NoError(t, err)

	// The overridden event routes cash receipts through the bank account.
	assert.Equal(t, domain.CodeBank, rules[domain.EventPaymentCash].DebitAccountCode)
	assert.Equal(t, domain.CodeReceivable, rules[domain.EventPaymentCash].CreditAccountCode)

	// Untouched events keep their defaults.
	assert.Equal(t, domain.DefaultPostingRules()[domain.EventEnrollment], rules[domain.EventEnrollment])
}

func TestLoadPostingRules_UnknownEventRejected(t *testing.T) {
	path := writeRulesFile(t, `[
		{"event": "LIBRARY_FINE", "debitAccountCode": "1100", "creditAccountCode": "4000", "journalRef": "FINE", "studentSide": "DEBIT"}
	]`)

	_, err := services.LoadPostingRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIBRARY_FINE")
}

func TestLoadPostingRules_FileErrors(t *testing.T) {
	_, err := services.LoadPostingRules(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeRulesFile(t, `{"not": "a list"}`)
	_, err = services.LoadPostingRules(path)
	assert.Error(t, err)
}
