package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// accountService provides chart-of-accounts registry operations.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryWithTx
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account after checking that the code's
// leading digit matches the declared type.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	declaredType := domain.AccountType(req.AccountType)

	codeType, ok := domain.TypeForCode(req.Code)
	if !ok {
		return nil, fmt.Errorf("%w: account code %q must start with a digit 1-5", apperrors.ErrValidation, req.Code)
	}
	if codeType != declaredType {
		return nil, fmt.Errorf("%w: code %s implies type %s, got %s", apperrors.ErrValidation, req.Code, codeType, declaredType)
	}

	if req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, req.ParentAccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrValidation, req.ParentAccountID)
		}
		if parent.AccountType != declaredType {
			return nil, fmt.Errorf("%w: parent account %s is %s, child must match", apperrors.ErrValidation, parent.Code, parent.AccountType)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     declaredType,
		ParentAccountID: req.ParentAccountID,
		Description:     req.Description,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account created", "account_id", account.AccountID, "code", account.Code)
	return &account, nil
}

// GetAccountByID retrieves one account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// GetAccountByCode retrieves one account by its unique code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, code)
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

// GetAccountsByCodes retrieves multiple accounts keyed by code.
func (s *accountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, codes)
}

// ListAccounts retrieves active accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

// UpdateAccount updates mutable fields. Code and type are frozen forever;
// they stay consistent with every line already posted against the account.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, updaterID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = updaterID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account inactive; inactive accounts reject new
// journal lines but keep their history.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, updaterID string) error {
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, updaterID, time.Now().UTC()); err != nil {
		return err
	}
	s.LogInfo(ctx, "Account deactivated", "account_id", accountID)
	return nil
}
