package repositories

// RepositoryProvider bundles the concrete repositories for service wiring.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryWithTx
	JournalRepo      JournalRepositoryWithTx
	BalanceRepo      BalanceRepositoryFacade
	StudentRepo      StudentRepositoryFacade
	EnrollmentRepo   EnrollmentRepositoryFacade
	CurrencyRepo     CurrencyRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
}
