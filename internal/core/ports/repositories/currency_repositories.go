package repositories

import (
	"context"
	"time"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// CurrencyRepositoryFacade defines operations for the currency registry.
type CurrencyRepositoryFacade interface {
	SaveCurrency(ctx context.Context, currency domain.Currency) error
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// ExchangeRateRepositoryFacade defines operations for stored exchange rates.
type ExchangeRateRepositoryFacade interface {
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// FindEffectiveRate retrieves the most recent rate between two
	// currencies effective on or before the given date.
	FindEffectiveRate(ctx context.Context, from, to string, on time.Time) (*domain.ExchangeRate, error)
}
