package services

import (
	"context"
	"time"

	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// CurrencySvcFacade exposes the currency registry.
type CurrencySvcFacade interface {
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorID string) (*domain.Currency, error)
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// ExchangeRateSvcFacade exposes stored exchange rates. Rates are pure
// inputs: the ledger applies them to derive base-currency amounts before
// posting but never computes them.
type ExchangeRateSvcFacade interface {
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorID string) (*domain.ExchangeRate, error)
	GetEffectiveRate(ctx context.Context, from, to string, on time.Time) (*domain.ExchangeRate, error)
}
