package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary key, e.g. "USD"
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	AuditFields
}

// ExchangeRate stores the conversion rate between two currencies for a
// specific date. The ledger treats rates as pure inputs: a rate is applied
// to derive the base-currency amount before posting, never computed here.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
