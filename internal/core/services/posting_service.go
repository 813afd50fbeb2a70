package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/core/domain"
	portsrepo "github.com/openedu/school_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/utils/retrypolicy"
)

// postingService is the orchestrator for money-moving business events. Every
// operation composes a balanced journal entry, the matching student
// sub-ledger transaction and the derived balance updates in one database
// transaction, retried on transient lock conflicts. Partial state is never
// observable.
type postingService struct {
	BaseService
	journalSvc   portssvc.JournalSvcFacade
	studentSvc   portssvc.StudentLedgerSvcFacade
	journalRepo  portsrepo.JournalRepositoryWithTx
	accountRepo  portsrepo.AccountRepositoryWithTx
	studentRepo  portsrepo.StudentRepositoryFacade
	enrollRepo   portsrepo.EnrollmentRepositoryFacade
	exchangeSvc  portssvc.ExchangeRateSvcFacade
	audit        portssvc.AuditLogger
	rules        map[domain.EventKind]domain.PostingRule
	baseCurrency string
	gracePeriod  time.Duration
	retry        retrypolicy.Policy
}

// PostingDeps bundles the collaborators of the posting orchestrator.
type PostingDeps struct {
	JournalSvc   portssvc.JournalSvcFacade
	StudentSvc   portssvc.StudentLedgerSvcFacade
	JournalRepo  portsrepo.JournalRepositoryWithTx
	AccountRepo  portsrepo.AccountRepositoryWithTx
	StudentRepo  portsrepo.StudentRepositoryFacade
	EnrollRepo   portsrepo.EnrollmentRepositoryFacade
	ExchangeSvc  portssvc.ExchangeRateSvcFacade
	Audit        portssvc.AuditLogger
	Rules        map[domain.EventKind]domain.PostingRule
	BaseCurrency string
	GracePeriod  time.Duration
	Retry        retrypolicy.Policy
}

// NewPostingService creates a new PostingService.
func NewPostingService(deps PostingDeps) portssvc.PostingSvcFacade {
	return &postingService{
		journalSvc:   deps.JournalSvc,
		studentSvc:   deps.StudentSvc,
		journalRepo:  deps.JournalRepo,
		accountRepo:  deps.AccountRepo,
		studentRepo:  deps.StudentRepo,
		enrollRepo:   deps.EnrollRepo,
		exchangeSvc:  deps.ExchangeSvc,
		audit:        deps.Audit,
		rules:        deps.Rules,
		baseCurrency: deps.BaseCurrency,
		gracePeriod:  deps.GracePeriod,
		retry:        deps.Retry,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// ValidateRules resolves every configured posting rule against the chart of
// accounts. Called once at startup.
func (s *postingService) ValidateRules(ctx context.Context) error {
	codes := make([]string, 0, len(s.rules)*2)
	seen := make(map[string]bool)
	for _, rule := range s.rules {
		for _, code := range []string{rule.DebitAccountCode, rule.CreditAccountCode} {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to resolve posting rule accounts: %w", err)
	}

	for event, rule := range s.rules {
		for _, code := range []string{rule.DebitAccountCode, rule.CreditAccountCode} {
			acc, ok := accounts[code]
			if !ok {
				return fmt.Errorf("%w: posting rule %s names account code %s which does not exist", apperrors.ErrValidation, event, code)
			}
			if !acc.IsActive {
				return fmt.Errorf("%w: posting rule %s names inactive account %s", apperrors.ErrValidation, event, code)
			}
		}
	}
	return nil
}

func (s *postingService) rule(event domain.EventKind) (domain.PostingRule, error) {
	rule, ok := s.rules[event]
	if !ok {
		return domain.PostingRule{}, fmt.Errorf("%w: no posting rule for event %s", apperrors.ErrValidation, event)
	}
	return rule, nil
}

// checkReference enforces idempotency: a reference that already names a
// journal refuses the posting instead of double-charging.
func (s *postingService) checkReference(ctx context.Context, reference string) error {
	if reference == "" {
		return nil
	}
	existing, err := s.journalRepo.FindJournalByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: reference %s already posted as journal %s", apperrors.ErrDuplicate, reference, existing.JournalID)
}

// postEventInTx writes one rule-driven journal entry plus the matching
// sub-ledger transaction inside tx and returns both.
func (s *postingService) postEventInTx(ctx context.Context, tx pgx.Tx, event domain.EventKind, studentID string, amount decimal.Decimal, description, term, academicYear, reference, actorID string) (*domain.Journal, *domain.StudentTransaction, error) {
	rule, err := s.rule(event)
	if err != nil {
		return nil, nil, err
	}
	return s.postRuleInTx(ctx, tx, rule, studentID, amount, description, term, academicYear, reference, actorID)
}

// postRuleInTx posts a journal entry for an explicit rule. The sub-ledger
// transaction is skipped when studentID is empty; only manual adjustments
// between general-ledger accounts take that path.
func (s *postingService) postRuleInTx(ctx context.Context, tx pgx.Tx, rule domain.PostingRule, studentID string, amount decimal.Decimal, description, term, academicYear, reference, actorID string) (*domain.Journal, *domain.StudentTransaction, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, []string{rule.DebitAccountCode, rule.CreditAccountCode})
	if err != nil {
		return nil, nil, err
	}
	debitAcc, ok := accounts[rule.DebitAccountCode]
	if !ok {
		return nil, nil, fmt.Errorf("%w: account code %s", apperrors.ErrUnknownAccount, rule.DebitAccountCode)
	}
	creditAcc, ok := accounts[rule.CreditAccountCode]
	if !ok {
		return nil, nil, fmt.Errorf("%w: account code %s", apperrors.ErrUnknownAccount, rule.CreditAccountCode)
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	journal := domain.Journal{
		JournalID:   journalID,
		JournalRef:  rule.JournalRef,
		JournalDate: now,
		Description: description,
		Reference:   reference,
		Status:      domain.Posted,
		AuditFields: audit,
	}
	lines := []domain.JournalLine{
		{
			LineID:       uuid.NewString(),
			JournalID:    journalID,
			AccountID:    debitAcc.AccountID,
			Debit:        amount,
			CurrencyCode: s.baseCurrency,
			Description:  description,
			AuditFields:  audit,
		},
		{
			LineID:       uuid.NewString(),
			JournalID:    journalID,
			AccountID:    creditAcc.AccountID,
			Credit:       amount,
			CurrencyCode: s.baseCurrency,
			Description:  description,
			AuditFields:  audit,
		},
	}

	if err := s.journalSvc.PostInTx(ctx, tx, journal, lines); err != nil {
		return nil, nil, err
	}

	var txn *domain.StudentTransaction
	if studentID != "" {
		txn, err = s.studentSvc.RecordInTx(ctx, tx, portssvc.RecordStudentTxnInput{
			StudentID:    studentID,
			TxnType:      rule.StudentSide,
			Amount:       amount,
			Description:  description,
			Term:         term,
			AcademicYear: academicYear,
			JournalID:    journalID,
			ActorID:      actorID,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	journal.Lines = lines
	return &journal, txn, nil
}

func (s *postingService) response(ctx context.Context, journalID, transactionID, enrollmentID, studentID string) *dto.PostingResponse {
	resp := &dto.PostingResponse{
		JournalID:            journalID,
		StudentTransactionID: transactionID,
		EnrollmentID:         enrollmentID,
	}
	if studentID != "" {
		if balance, err := s.studentSvc.GetBalance(ctx, studentID); err == nil {
			b := dto.ToStudentBalanceResponse(balance)
			resp.StudentBalance = &b
		}
	}
	return resp
}

func (s *postingService) recordAudit(ctx context.Context, action, entityKind, entityID, actorID string, after interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, portssvc.AuditEvent{
		Action:     action,
		EntityKind: entityKind,
		EntityID:   entityID,
		ActorID:    actorID,
		After:      after,
		OccurredAt: time.Now().UTC(),
	})
}

// EnrollStudent charges tuition per the exact-match fee structure, records
// the enrollment and, for boarders, the boarding charge, atomically.
func (s *postingService) EnrollStudent(ctx context.Context, req dto.EnrollStudentRequest, actorID string) (*dto.PostingResponse, error) {
	tuition, err := s.enrollRepo.FindFeeStructure(ctx, domain.FeeTuition, req.Term, req.AcademicYear)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no tuition fee structure for %s %s", apperrors.ErrPreconditionFailed, req.Term, req.AcademicYear)
		}
		return nil, err
	}

	var boarding *domain.FeeStructure
	if req.RoomID != "" {
		boarding, err = s.enrollRepo.FindFeeStructure(ctx, domain.FeeBoarding, req.Term, req.AcademicYear)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no boarding fee structure for %s %s", apperrors.ErrPreconditionFailed, req.Term, req.AcademicYear)
			}
			return nil, err
		}
	}

	if _, err := s.enrollRepo.FindEnrollment(ctx, req.StudentID, req.Term, req.AcademicYear); err == nil {
		return nil, fmt.Errorf("%w: student %s is already enrolled for %s %s", apperrors.ErrDuplicate, req.StudentID, req.Term, req.AcademicYear)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if err := s.checkReference(ctx, req.Reference); err != nil {
		return nil, err
	}

	var resp *dto.PostingResponse
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		tx, err := s.journalRepo.Begin(ctx)
		if err != nil {
			return err
		}
		defer s.journalRepo.Rollback(ctx, tx)

		if req.RoomID != "" {
			// The row lock serializes racing capacity checks on the room.
			room, occupied, err := s.enrollRepo.LockRoomForUpdate(ctx, tx, req.RoomID)
			if err != nil {
				return err
			}
			if occupied >= room.Capacity {
				return fmt.Errorf("%w: room %s is full (%d/%d)", apperrors.ErrPreconditionFailed, room.Name, occupied, room.Capacity)
			}
		}

		description := fmt.Sprintf("Tuition %s %s", req.Term, req.AcademicYear)
		journal, txn, err := s.postEventInTx(ctx, tx, domain.EventEnrollment, req.StudentID, tuition.Amount, description, req.Term, req.AcademicYear, req.Reference, actorID)
		if err != nil {
			return err
		}

		var boardingJournalID string
		if boarding != nil {
			boardingDesc := fmt.Sprintf("Boarding %s %s", req.Term, req.AcademicYear)
			boardingJournal, _, err := s.postEventInTx(ctx, tx, domain.EventBoardingCharge, req.StudentID, boarding.Amount, boardingDesc, req.Term, req.AcademicYear, "", actorID)
			if err != nil {
				return err
			}
			boardingJournalID = boardingJournal.JournalID
		}

		now := time.Now().UTC()
		enrollment := domain.Enrollment{
			EnrollmentID:      uuid.NewString(),
			StudentID:         req.StudentID,
			RoomID:            req.RoomID,
			Term:              req.Term,
			AcademicYear:      req.AcademicYear,
			JournalID:         journal.JournalID,
			BoardingJournalID: boardingJournalID,
			Status:            domain.EnrollmentPosted,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if err := s.enrollRepo.SaveEnrollmentInTx(ctx, tx, enrollment); err != nil {
			return err
		}

		if err := s.journalRepo.Commit(ctx, tx); err != nil {
			return err
		}

		resp = s.response(ctx, journal.JournalID, txn.TransactionID, enrollment.EnrollmentID, req.StudentID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "ENROLL", "enrollment", resp.EnrollmentID, actorID, resp)
	s.LogInfo(ctx, "Student enrolled", "student_id", req.StudentID, "enrollment_id", resp.EnrollmentID, "journal_id", resp.JournalID)
	return resp, nil
}

// RecordPayment posts a payment against the student's receivable. Foreign
// currency amounts are converted to the base currency first; the rate is an
// input, never computed here.
func (s *postingService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actorID string) (*dto.PostingResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	amount := req.Amount
	if req.CurrencyCode != "" && req.CurrencyCode != s.baseCurrency {
		rate := req.Rate
		if rate == nil {
			stored, err := s.exchangeSvc.GetEffectiveRate(ctx, req.CurrencyCode, s.baseCurrency, time.Now().UTC())
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return nil, fmt.Errorf("%w: no exchange rate from %s to %s", apperrors.ErrPreconditionFailed, req.CurrencyCode, s.baseCurrency)
				}
				return nil, err
			}
			rate = &stored.Rate
		}
		amount = amount.Mul(*rate)
	}

	event := domain.EventPaymentCash
	if req.Method == dto.PaymentBank {
		event = domain.EventPaymentBank
	}

	if err := s.checkReference(ctx, req.Reference); err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Payment received"
	}

	return s.postSimpleEvent(ctx, event, req.StudentID, amount, description, "", "", req.Reference, actorID, "PAYMENT", nil)
}

// WaiveFee forgives part of the student's receivable. Waiving more than the
// student owes is refused; the balance is read under a row lock inside the
// posting transaction so two racing waivers cannot both pass the check.
func (s *postingService) WaiveFee(ctx context.Context, req dto.WaiveFeeRequest, actorID string) (*dto.PostingResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: waiver amount must be positive", apperrors.ErrValidation)
	}

	if err := s.checkReference(ctx, req.Reference); err != nil {
		return nil, err
	}

	precheck := func(ctx context.Context, tx pgx.Tx) error {
		owed, err := s.lockedBalance(ctx, tx, req.StudentID)
		if err != nil {
			return err
		}
		owed = owed.Neg()
		if req.Amount.GreaterThan(owed) {
			return fmt.Errorf("%w: waiver %s exceeds outstanding balance %s", apperrors.ErrPreconditionFailed, req.Amount.String(), owed.String())
		}
		return nil
	}

	return s.postSimpleEvent(ctx, domain.EventFeeWaiver, req.StudentID, req.Amount, req.Description, "", "", req.Reference, actorID, "WAIVE", precheck)
}

// lockedBalance reads a student's materialized balance under a row lock. A
// student with no balance row is at zero.
func (s *postingService) lockedBalance(ctx context.Context, tx pgx.Tx, studentID string) (decimal.Decimal, error) {
	balance, err := s.studentRepo.FindBalanceForUpdate(ctx, tx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance.Balance, nil
}

// SellUniform charges the uniform fee for the term.
func (s *postingService) SellUniform(ctx context.Context, req dto.ChargeFeeRequest, actorID string) (*dto.PostingResponse, error) {
	return s.chargeFromFeeStructure(ctx, domain.EventUniformSale, domain.FeeUniform, req, actorID, "UNIFORM_SALE")
}

// ChargeTransport charges the transport fee for the term.
func (s *postingService) ChargeTransport(ctx context.Context, req dto.ChargeFeeRequest, actorID string) (*dto.PostingResponse, error) {
	return s.chargeFromFeeStructure(ctx, domain.EventTransportCharge, domain.FeeTransport, req, actorID, "TRANSPORT_CHARGE")
}

// RefundPayment returns money to the student. The student must hold at least
// that much credit, checked under a row lock inside the posting transaction.
func (s *postingService) RefundPayment(ctx context.Context, req dto.RefundPaymentRequest, actorID string) (*dto.PostingResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be positive", apperrors.ErrValidation)
	}

	if err := s.checkReference(ctx, req.Reference); err != nil {
		return nil, err
	}

	precheck := func(ctx context.Context, tx pgx.Tx) error {
		credit, err := s.lockedBalance(ctx, tx, req.StudentID)
		if err != nil {
			return err
		}
		if credit.LessThan(req.Amount) {
			return fmt.Errorf("%w: refund %s exceeds credit balance %s", apperrors.ErrPreconditionFailed, req.Amount.String(), credit.String())
		}
		return nil
	}

	description := req.Description
	if description == "" {
		description = "Refund issued"
	}

	return s.postSimpleEvent(ctx, domain.EventRefund, req.StudentID, req.Amount, description, "", "", req.Reference, actorID, "REFUND", precheck)
}

// PostAdjustment posts a manual correction between two explicit accounts.
// When a student is named the adjustment is mirrored into their sub-ledger.
func (s *postingService) PostAdjustment(ctx context.Context, req dto.PostAdjustmentRequest, actorID string) (*dto.PostingResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: adjustment amount must be positive", apperrors.ErrValidation)
	}
	if req.DebitAccountCode == req.CreditAccountCode {
		return nil, fmt.Errorf("%w: adjustment must move between two different accounts", apperrors.ErrValidation)
	}
	if req.StudentID != "" && req.StudentSide != string(domain.StudentDebit) && req.StudentSide != string(domain.StudentCredit) {
		return nil, fmt.Errorf("%w: studentSide must be DEBIT or CREDIT", apperrors.ErrValidation)
	}

	if err := s.checkReference(ctx, req.Reference); err != nil {
		return nil, err
	}

	rule := domain.PostingRule{
		Event:             domain.EventAdjustment,
		DebitAccountCode:  req.DebitAccountCode,
		CreditAccountCode: req.CreditAccountCode,
		JournalRef:        "ADJUSTMENT",
		StudentSide:       domain.StudentTxnType(req.StudentSide),
	}

	var resp *dto.PostingResponse
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		tx, err := s.journalRepo.Begin(ctx)
		if err != nil {
			return err
		}
		defer s.journalRepo.Rollback(ctx, tx)

		journal, txn, err := s.postRuleInTx(ctx, tx, rule, req.StudentID, req.Amount, req.Description, "", "", req.Reference, actorID)
		if err != nil {
			return err
		}

		if err := s.journalRepo.Commit(ctx, tx); err != nil {
			return err
		}

		transactionID := ""
		if txn != nil {
			transactionID = txn.TransactionID
		}
		resp = s.response(ctx, journal.JournalID, transactionID, "", req.StudentID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "ADJUSTMENT", "journal", resp.JournalID, actorID, resp)
	s.LogInfo(ctx, "Manual adjustment posted", "journal_id", resp.JournalID, "debit_code", req.DebitAccountCode, "credit_code", req.CreditAccountCode)
	return resp, nil
}

func (s *postingService) chargeFromFeeStructure(ctx context.Context, event domain.EventKind, kind domain.FeeKind, req dto.ChargeFeeRequest, actorID, auditAction string) (*dto.PostingResponse, error) {
	fee, err := s.enrollRepo.FindFeeStructure(ctx, kind, req.Term, req.AcademicYear)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s fee structure for %s %s", apperrors.ErrPreconditionFailed, kind, req.Term, req.AcademicYear)
		}
		return nil, err
	}

	if err := s.checkReference(ctx, req.Reference); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("%s %s %s", kind, req.Term, req.AcademicYear)
	return s.postSimpleEvent(ctx, event, req.StudentID, fee.Amount, description, req.Term, req.AcademicYear, req.Reference, actorID, auditAction, nil)
}

// postSimpleEvent runs one journal-plus-sub-ledger posting in its own
// retried transaction. A non-nil precheck runs inside the transaction before
// anything is posted.
func (s *postingService) postSimpleEvent(ctx context.Context, event domain.EventKind, studentID string, amount decimal.Decimal, description, term, academicYear, reference, actorID, auditAction string, precheck func(context.Context, pgx.Tx) error) (*dto.PostingResponse, error) {
	var resp *dto.PostingResponse
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		tx, err := s.journalRepo.Begin(ctx)
		if err != nil {
			return err
		}
		defer s.journalRepo.Rollback(ctx, tx)

		if precheck != nil {
			if err := precheck(ctx, tx); err != nil {
				return err
			}
		}

		journal, txn, err := s.postEventInTx(ctx, tx, event, studentID, amount, description, term, academicYear, reference, actorID)
		if err != nil {
			return err
		}

		if err := s.journalRepo.Commit(ctx, tx); err != nil {
			return err
		}

		resp = s.response(ctx, journal.JournalID, txn.TransactionID, "", studentID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditAction, "journal", resp.JournalID, actorID, resp)
	s.LogInfo(ctx, "Event posted", "event", string(event), "student_id", studentID, "journal_id", resp.JournalID)
	return resp, nil
}

// reverseJournalInTx writes the reversing journal entry for one journal and,
// when a sub-ledger transaction backs it, the compensating student
// transaction. Returns the reversing journal ID, the compensating
// transaction ID and the student involved, if any.
func (s *postingService) reverseJournalInTx(ctx context.Context, tx pgx.Tx, journalID, actorID string) (string, string, string, error) {
	reversing, err := s.journalSvc.ReverseInTx(ctx, tx, journalID, actorID)
	if err != nil {
		return "", "", "", err
	}

	original, err := s.studentRepo.FindTransactionByJournalID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return reversing.JournalID, "", "", nil
		}
		return "", "", "", err
	}

	now := time.Now().UTC()
	compensating := domain.StudentTransaction{
		TransactionID:         uuid.NewString(),
		StudentID:             original.StudentID,
		TxnType:               original.TxnType.Opposite(),
		Amount:                original.Amount,
		Description:           fmt.Sprintf("Reversal of: %s", original.Description),
		Term:                  original.Term,
		AcademicYear:          original.AcademicYear,
		JournalID:             reversing.JournalID,
		ReversesTransactionID: &original.TransactionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.studentRepo.RecordTransactionInTx(ctx, tx, compensating); err != nil {
		return "", "", "", err
	}
	return reversing.JournalID, compensating.TransactionID, original.StudentID, nil
}

// ReversePosting compensates a posted event: a reversing journal entry plus
// the opposite sub-ledger transaction, atomically. History is preserved on
// both ledgers. When the journal belongs to an enrollment, every journal the
// enrollment posted is reversed, so a boarder's boarding charge never
// outlives the undone enrollment.
func (s *postingService) ReversePosting(ctx context.Context, journalID string, actorID string) (*dto.PostingResponse, error) {
	var resp *dto.PostingResponse
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		tx, err := s.journalRepo.Begin(ctx)
		if err != nil {
			return err
		}
		defer s.journalRepo.Rollback(ctx, tx)

		reversingID, compensatingID, studentID, err := s.reverseJournalInTx(ctx, tx, journalID, actorID)
		if err != nil {
			return err
		}

		var enrollmentID string
		if enrollment, err := s.enrollRepo.FindEnrollmentByJournalID(ctx, journalID); err == nil {
			for _, linked := range enrollment.JournalIDs() {
				if linked == journalID {
					continue
				}
				if _, _, _, err := s.reverseJournalInTx(ctx, tx, linked, actorID); err != nil {
					return err
				}
			}
			if err := s.enrollRepo.UpdateEnrollmentStatusInTx(ctx, tx, enrollment.EnrollmentID, domain.EnrollmentReversed, actorID); err != nil {
				return err
			}
			enrollmentID = enrollment.EnrollmentID
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		if err := s.journalRepo.Commit(ctx, tx); err != nil {
			return err
		}

		resp = &dto.PostingResponse{
			JournalID:            reversingID,
			StudentTransactionID: compensatingID,
			EnrollmentID:         enrollmentID,
		}
		if studentID != "" {
			if balance, err := s.studentSvc.GetBalance(ctx, studentID); err == nil {
				b := dto.ToStudentBalanceResponse(balance)
				resp.StudentBalance = &b
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "REVERSE", "journal", journalID, actorID, resp)
	s.LogInfo(ctx, "Posting reversed", "journal_id", journalID, "reversing_journal_id", resp.JournalID)
	return resp, nil
}

// CancelEnrollment is the grace-period deletion path: within the window the
// enrollment, its journal entry and the backing sub-ledger movement are
// removed outright and every derived balance moves back. Past the window it
// fails; reversal is the correction mechanism from then on.
func (s *postingService) CancelEnrollment(ctx context.Context, enrollmentID string, actorID string) (*dto.PostingResponse, error) {
	enrollment, err := s.enrollRepo.FindEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != domain.EnrollmentPosted {
		return nil, fmt.Errorf("%w: enrollment %s is %s", apperrors.ErrPreconditionFailed, enrollmentID, enrollment.Status)
	}

	// Inclusive boundary: an enrollment exactly at the window's edge can
	// still be cancelled.
	now := time.Now().UTC()
	if now.Sub(enrollment.CreatedAt) > s.gracePeriod {
		return nil, fmt.Errorf("%w: enrollment %s was posted at %s, reverse it instead", apperrors.ErrGracePeriodExpired, enrollmentID, enrollment.CreatedAt.Format(time.RFC3339))
	}

	var resp *dto.PostingResponse
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		tx, err := s.journalRepo.Begin(ctx)
		if err != nil {
			return err
		}
		defer s.journalRepo.Rollback(ctx, tx)

		if err := s.enrollRepo.DeleteEnrollmentInTx(ctx, tx, enrollmentID); err != nil {
			return err
		}

		// Every journal the enrollment posted goes, boarding included. The
		// sub-ledger rows must go first: journal_id is NOT NULL, so they
		// cannot outlive the journal entry.
		for _, linked := range enrollment.JournalIDs() {
			if _, err := s.studentRepo.DeleteTransactionsByJournalInTx(ctx, tx, linked, now); err != nil {
				return err
			}
			if _, err := s.journalSvc.DeleteInTx(ctx, tx, linked); err != nil {
				return err
			}
		}

		if err := s.journalRepo.Commit(ctx, tx); err != nil {
			return err
		}

		resp = s.response(ctx, enrollment.JournalID, "", enrollmentID, enrollment.StudentID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "CANCEL_ENROLLMENT", "enrollment", enrollmentID, actorID, resp)
	s.LogInfo(ctx, "Enrollment cancelled within grace window", "enrollment_id", enrollmentID, "journal_id", enrollment.JournalID)
	return resp, nil
}
