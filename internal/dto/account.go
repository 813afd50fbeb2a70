package dto

import (
	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// CreateAccountRequest defines the payload to create a chart-of-accounts entry.
// The code's leading digit must match the declared type.
type CreateAccountRequest struct {
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	AccountType     string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentAccountID string `json:"parentAccountID"`
	Description     string `json:"description"`
}

// UpdateAccountRequest defines the mutable account fields.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string `json:"accountID"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	AccountType     string `json:"accountType"`
	ParentAccountID string `json:"parentAccountID,omitempty"`
	Description     string `json:"description,omitempty"`
	IsActive        bool   `json:"isActive"`
}

// AccountBalanceResponse is one materialized (account, currency) balance.
type AccountBalanceResponse struct {
	AccountID    string          `json:"accountID"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     string(a.AccountType),
		ParentAccountID: a.ParentAccountID,
		Description:     a.Description,
		IsActive:        a.IsActive,
	}
}

// ToAccountBalanceResponses converts domain balance rows to response DTOs.
func ToAccountBalanceResponses(balances []domain.AccountBalance) []AccountBalanceResponse {
	out := make([]AccountBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = AccountBalanceResponse{
			AccountID:    b.AccountID,
			CurrencyCode: b.CurrencyCode,
			Balance:      b.Balance,
		}
	}
	return out
}
