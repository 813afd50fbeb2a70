package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/utils/retrypolicy"
	"github.com/openedu/school_ledger_app/pkg/config"
)

// LoadPostingRules merges rule overrides from an optional JSON file over the
// built-in defaults. Overrides may only retarget events that already have a
// rule; manual adjustments carry their accounts per request and take none.
func LoadPostingRules(path string) (map[domain.EventKind]domain.PostingRule, error) {
	rules := domain.DefaultPostingRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read posting rules file %s: %w", path, err)
	}
	var overrides []domain.PostingRule
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse posting rules file %s: %w", path, err)
	}

	for _, override := range overrides {
		if _, ok := rules[override.Event]; !ok {
			return nil, fmt.Errorf("posting rules file %s names unknown event %s", path, override.Event)
		}
		rules[override.Event] = override
	}
	return rules, nil
}

// NewServiceContainer wires every service facade from the repository
// provider and configuration.
func NewServiceContainer(cfg *config.Config, repos *repositories.RepositoryProvider) (*portssvc.ServiceContainer, error) {
	rules, err := LoadPostingRules(cfg.PostingRulesFile)
	if err != nil {
		return nil, err
	}

	gracePeriod := cfg.GracePeriod()
	retry := retrypolicy.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}

	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(repos.JournalRepo, repos.AccountRepo, repos.BalanceRepo, gracePeriod)
	balanceSvc := NewBalanceService(repos.BalanceRepo)
	studentSvc := NewStudentLedgerService(repos.StudentRepo, journalSvc, gracePeriod)
	currencySvc := NewCurrencyService(repos.CurrencyRepo)
	exchangeSvc := NewExchangeRateService(repos.ExchangeRateRepo, currencySvc)

	postingSvc := NewPostingService(PostingDeps{
		JournalSvc:   journalSvc,
		StudentSvc:   studentSvc,
		JournalRepo:  repos.JournalRepo,
		AccountRepo:  repos.AccountRepo,
		StudentRepo:  repos.StudentRepo,
		EnrollRepo:   repos.EnrollmentRepo,
		ExchangeSvc:  exchangeSvc,
		Audit:        NewSlogAuditLogger(),
		Rules:        rules,
		BaseCurrency: cfg.BaseCurrency,
		GracePeriod:  gracePeriod,
		Retry:        retry,
	})

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Journal:        journalSvc,
		Balance:        balanceSvc,
		StudentLedger:  studentSvc,
		Posting:        postingSvc,
		Reconciliation: NewReconciliationService(balanceSvc, repos.StudentRepo),
		Currency:       currencySvc,
		ExchangeRate:   exchangeSvc,
	}, nil
}
