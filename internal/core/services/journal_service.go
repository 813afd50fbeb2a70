package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/utils/accounting"
)

// journalService provides the append-only journal store: validated posting,
// compensating reversals and the narrow grace-period delete path.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryWithTx
	balanceRepo portsrepo.BalanceRepositoryFacade
	gracePeriod time.Duration
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryWithTx, balanceRepo portsrepo.BalanceRepositoryFacade, gracePeriod time.Duration) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		gracePeriod: gracePeriod,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// Post validates and durably appends a balanced entry.
func (s *journalService) Post(ctx context.Context, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error) {
	now := time.Now().UTC()
	journalID := uuid.NewString()

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorID,
	}

	journal := domain.Journal{
		JournalID:   journalID,
		JournalRef:  req.JournalRef,
		JournalDate: req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		Status:      domain.Posted,
		AuditFields: audit,
	}

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			JournalID:    journalID,
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			CurrencyCode: l.CurrencyCode,
			Description:  l.Description,
			AuditFields:  audit,
		}
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	if err := s.PostInTx(ctx, tx, journal, lines); err != nil {
		return nil, err
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal posted", "journal_id", journalID, "journal_ref", journal.JournalRef)
	journal.Lines = lines
	return &journal, nil
}

// PostInTx validates the entry, locks the touched accounts, writes the
// journal with its lines and applies the balance deltas, all inside the
// caller's transaction.
func (s *journalService) PostInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, lines []domain.JournalLine) error {
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrUnbalancedEntry, err.Error())
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			accountIDs = append(accountIDs, l.AccountID)
		}
	}
	if len(accountIDs) < 2 {
		return fmt.Errorf("%w: journal must affect at least two different accounts", apperrors.ErrValidation)
	}

	// Lock the account rows so concurrent entries touching the same accounts
	// serialize their balance updates.
	lockedAccounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, err.Error())
		}
		return err
	}

	accountTypes := make(map[string]domain.AccountType, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrUnknownAccount, acc.Code, id)
		}
		accountTypes[id] = acc.AccountType
	}

	if err := s.journalRepo.SaveJournalInTx(ctx, tx, journal, lines); err != nil {
		return err
	}

	deltas, err := accounting.EntryDeltas(lines, accountTypes)
	if err != nil {
		return err
	}
	if err := s.balanceRepo.ApplyDeltasInTx(ctx, tx, deltas, journal.CreatedAt); err != nil {
		return err
	}

	return nil
}

// Delete removes an entry within its grace window and applies the inverse
// balance deltas.
func (s *journalService) Delete(ctx context.Context, journalID string, actorID string) ([]domain.BalanceDelta, error) {
	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	applied, err := s.DeleteInTx(ctx, tx, journalID)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal deleted within grace window", "journal_id", journalID, "actor_id", actorID)
	return applied, nil
}

// DeleteInTx is Delete inside the caller's transaction.
func (s *journalService) DeleteInTx(ctx context.Context, tx pgx.Tx, journalID string) ([]domain.BalanceDelta, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	if journal.Status != domain.Posted {
		return nil, fmt.Errorf("%w: journal %s is %s, only POSTED entries can be deleted", apperrors.ErrPreconditionFailed, journalID, journal.Status)
	}
	if journal.ReversingJournalID != nil || journal.OriginalJournalID != nil {
		return nil, fmt.Errorf("%w: journal %s participates in a reversal", apperrors.ErrPreconditionFailed, journalID)
	}

	// The window is inclusive: an entry exactly at the boundary age is still
	// deletable. Past it, compensating reversal is the only correction path.
	now := time.Now().UTC()
	if now.Sub(journal.CreatedAt) > s.gracePeriod {
		return nil, fmt.Errorf("%w: journal %s was posted at %s", apperrors.ErrGracePeriodExpired, journalID, journal.CreatedAt.Format(time.RFC3339))
	}

	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			accountIDs = append(accountIDs, l.AccountID)
		}
	}

	lockedAccounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}
	accountTypes := make(map[string]domain.AccountType, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		accountTypes[id] = acc.AccountType
	}

	deltas, err := accounting.EntryDeltas(lines, accountTypes)
	if err != nil {
		return nil, err
	}
	inverse := accounting.InvertDeltas(deltas)

	if err := s.journalRepo.DeleteJournalInTx(ctx, tx, journalID); err != nil {
		return nil, err
	}
	if err := s.balanceRepo.ApplyDeltasInTx(ctx, tx, inverse, now); err != nil {
		return nil, err
	}

	applied := make([]domain.BalanceDelta, 0, len(inverse))
	for accountID, byCurrency := range inverse {
		for currency, delta := range byCurrency {
			applied = append(applied, domain.BalanceDelta{
				AccountID:    accountID,
				CurrencyCode: currency,
				Delta:        delta,
			})
		}
	}
	return applied, nil
}

// Reverse posts a compensating entry with debit/credit swapped and marks the
// original REVERSED.
func (s *journalService) Reverse(ctx context.Context, journalID string, actorID string) (*domain.Journal, error) {
	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	reversing, err := s.ReverseInTx(ctx, tx, journalID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal reversed", "journal_id", journalID, "reversing_journal_id", reversing.JournalID)
	return reversing, nil
}

// ReverseInTx is Reverse inside the caller's transaction.
func (s *journalService) ReverseInTx(ctx context.Context, tx pgx.Tx, journalID string, actorID string) (*domain.Journal, error) {
	original, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: journal %s is %s, only POSTED entries can be reversed", apperrors.ErrPreconditionFailed, journalID, original.Status)
	}
	if original.ReversingJournalID != nil {
		return nil, fmt.Errorf("%w: journal %s is already reversed by %s", apperrors.ErrPreconditionFailed, journalID, *original.ReversingJournalID)
	}

	originalLines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newJournalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	reversing := domain.Journal{
		JournalID:         newJournalID,
		JournalRef:        original.JournalRef,
		JournalDate:       now,
		Description:       fmt.Sprintf("Reversal of: %s", original.Description),
		Status:            domain.Posted,
		OriginalJournalID: &original.JournalID,
		AuditFields:       audit,
	}

	// Swap debit and credit on every line; amounts stay put so the
	// compensating entry balances by construction.
	reversingLines := make([]domain.JournalLine, len(originalLines))
	for i, orig := range originalLines {
		reversingLines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			JournalID:    newJournalID,
			AccountID:    orig.AccountID,
			Debit:        orig.Credit,
			Credit:       orig.Debit,
			CurrencyCode: orig.CurrencyCode,
			Description:  orig.Description,
			AuditFields:  audit,
		}
	}

	if err := s.PostInTx(ctx, tx, reversing, reversingLines); err != nil {
		return nil, err
	}

	if err := s.journalRepo.UpdateJournalStatusAndLinksInTx(ctx, tx, original.JournalID, domain.Reversed, &newJournalID, actorID, now); err != nil {
		return nil, err
	}

	reversing.Lines = reversingLines
	return &reversing, nil
}

// GetByID retrieves a journal with its lines.
func (s *journalService) GetByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	journal.Lines = lines
	return journal, nil
}

// FindByReference retrieves a journal by its external reference key.
func (s *journalService) FindByReference(ctx context.Context, reference string) (*domain.Journal, error) {
	return s.journalRepo.FindJournalByReference(ctx, reference)
}

// List retrieves a keyset-paginated page of journals.
func (s *journalService) List(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	journals, nextToken, err := s.journalRepo.ListJournals(ctx, params.Limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListJournalsResponse{
		Journals:  make([]dto.JournalResponse, len(journals)),
		NextToken: nextToken,
	}
	for i := range journals {
		resp.Journals[i] = dto.ToJournalResponse(&journals[i])
	}
	return resp, nil
}

// ListLinesByAccount retrieves a keyset-paginated page of lines for one account.
func (s *journalService) ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	lines, nextToken, err := s.journalRepo.ListLinesByAccountID(ctx, accountID, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	return &dto.ListLinesResponse{
		Lines:     dto.ToJournalLineResponses(lines),
		NextToken: nextToken,
	}, nil
}
