package services

// ServiceContainer aggregates the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Journal        JournalSvcFacade
	Balance        BalanceSvcFacade
	StudentLedger  StudentLedgerSvcFacade
	Posting        PostingSvcFacade
	Reconciliation ReconciliationSvcFacade
	Currency       CurrencySvcFacade
	ExchangeRate   ExchangeRateSvcFacade
}
