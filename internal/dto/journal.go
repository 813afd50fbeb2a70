package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/core/domain"
)

// CreateJournalLineRequest is one proposed debit/credit line. Exactly one of
// debit/credit must be positive.
type CreateJournalLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	CurrencyCode string          `json:"currencyCode" binding:"required"`
	Description  string          `json:"description"`
}

// CreateJournalRequest is the payload for a manual balanced entry
// (adjustments posted directly against the journal store).
type CreateJournalRequest struct {
	JournalRef  string                     `json:"journalRef" binding:"required"`
	Date        time.Time                  `json:"date" binding:"required"`
	Description string                     `json:"description" binding:"required"`
	Reference   string                     `json:"reference"`
	Lines       []CreateJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	JournalID    string          `json:"journalID"`
	AccountID    string          `json:"accountID"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	CurrencyCode string          `json:"currencyCode"`
	Description  string          `json:"description,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID          string                `json:"journalID"`
	JournalRef         string                `json:"journalRef"`
	Date               time.Time             `json:"date"`
	Description        string                `json:"description"`
	Reference          string                `json:"reference,omitempty"`
	Status             string                `json:"status"`
	OriginalJournalID  *string               `json:"originalJournalID,omitempty"`
	ReversingJournalID *string               `json:"reversingJournalID,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
	Lines              []JournalLineResponse `json:"lines,omitempty"`
}

// ListJournalsParams carries pagination parameters for journal listing.
type ListJournalsParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
}

// ListJournalsResponse is one page of journals plus the next-page token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListLinesParams carries pagination parameters for per-account line listing.
type ListLinesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse is one page of journal lines plus the next-page token.
type ListLinesResponse struct {
	Lines     []JournalLineResponse `json:"lines"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain line to its response DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:       l.LineID,
		JournalID:    l.JournalID,
		AccountID:    l.AccountID,
		Debit:        l.Debit,
		Credit:       l.Credit,
		CurrencyCode: l.CurrencyCode,
		Description:  l.Description,
	}
}

// ToJournalLineResponses converts a slice of domain lines.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	out := make([]JournalLineResponse, len(lines))
	for i := range lines {
		out[i] = ToJournalLineResponse(&lines[i])
	}
	return out
}

// ToJournalResponse converts a domain journal to its response DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := JournalResponse{
		JournalID:          j.JournalID,
		JournalRef:         j.JournalRef,
		Date:               j.JournalDate,
		Description:        j.Description,
		Reference:          j.Reference,
		Status:             string(j.Status),
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		CreatedAt:          j.CreatedAt,
		CreatedBy:          j.CreatedBy,
	}
	if len(j.Lines) > 0 {
		resp.Lines = ToJournalLineResponses(j.Lines)
	}
	return resp
}
