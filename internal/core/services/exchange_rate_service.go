package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
)

type exchangeRateService struct {
	BaseService
	rateRepo    repositories.ExchangeRateRepositoryFacade
	currencySvc portssvc.CurrencySvcFacade
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo repositories.ExchangeRateRepositoryFacade, currencySvc portssvc.CurrencySvcFacade) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{rateRepo: rateRepo, currencySvc: currencySvc}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorID string) (*domain.ExchangeRate, error) {
	from := strings.ToUpper(req.FromCurrencyCode)
	to := strings.ToUpper(req.ToCurrencyCode)
	if from == to {
		return nil, fmt.Errorf("%w: from and to currency must differ", apperrors.ErrValidation)
	}
	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: rate must be positive", apperrors.ErrValidation)
	}
	for _, code := range []string{from, to} {
		if _, err := s.currencySvc.GetCurrency(ctx, code); err != nil {
			return nil, fmt.Errorf("%w: currency %s is not registered", apperrors.ErrValidation, code)
		}
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             req.Rate,
		DateEffective:    req.DateEffective.UTC(),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}
	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Exchange rate stored", "from", from, "to", to, "rate", req.Rate.String())
	return &rate, nil
}

func (s *exchangeRateService) GetEffectiveRate(ctx context.Context, from, to string, on time.Time) (*domain.ExchangeRate, error) {
	return s.rateRepo.FindEffectiveRate(ctx, strings.ToUpper(from), strings.ToUpper(to), on)
}
