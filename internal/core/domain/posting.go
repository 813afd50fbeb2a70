package domain

// EventKind identifies a money-moving business event handled by the posting
// orchestrator.
type EventKind string

const (
	EventEnrollment      EventKind = "ENROLLMENT"
	EventBoardingCharge  EventKind = "BOARDING_CHARGE"
	EventPaymentCash     EventKind = "PAYMENT_CASH"
	EventPaymentBank     EventKind = "PAYMENT_BANK"
	EventFeeWaiver       EventKind = "FEE_WAIVER"
	EventUniformSale     EventKind = "UNIFORM_SALE"
	EventTransportCharge EventKind = "TRANSPORT_CHARGE"
	EventRefund          EventKind = "REFUND"
	EventAdjustment      EventKind = "MANUAL_ADJUSTMENT"
)

// PostingRule maps a business event to the account codes it debits and
// credits. Rules are static configuration validated against the chart of
// accounts at startup; accounts are never resolved by name matching.
type PostingRule struct {
	Event             EventKind `json:"event"`
	DebitAccountCode  string    `json:"debitAccountCode"`
	CreditAccountCode string    `json:"creditAccountCode"`
	JournalRef        string    `json:"journalRef"`
	// StudentSide is the sub-ledger transaction type the event produces.
	StudentSide StudentTxnType `json:"studentSide"`
}

// Well-known account codes used by the default posting rules.
const (
	CodeCash             = "1000"
	CodeBank             = "1010"
	CodeReceivable       = "1100"
	CodeTuitionRevenue   = "4000"
	CodeBoardingRevenue  = "4100"
	CodeUniformRevenue   = "4200"
	CodeTransportRevenue = "4300"
	CodeFeeWaiverExpense = "5100"
)

// DefaultPostingRules returns the built-in event-to-account mapping, keyed by
// event kind. Deployments may override it through configuration.
func DefaultPostingRules() map[EventKind]PostingRule {
	rules := []PostingRule{
		{Event: EventEnrollment, DebitAccountCode: CodeReceivable, CreditAccountCode: CodeTuitionRevenue, JournalRef: "ENROLLMENT", StudentSide: StudentDebit},
		{Event: EventBoardingCharge, DebitAccountCode: CodeReceivable, CreditAccountCode: CodeBoardingRevenue, JournalRef: "BOARDING", StudentSide: StudentDebit},
		{Event: EventPaymentCash, DebitAccountCode: CodeCash, CreditAccountCode: CodeReceivable, JournalRef: "PAYMENT", StudentSide: StudentCredit},
		{Event: EventPaymentBank, DebitAccountCode: CodeBank, CreditAccountCode: CodeReceivable, JournalRef: "PAYMENT", StudentSide: StudentCredit},
		{Event: EventFeeWaiver, DebitAccountCode: CodeFeeWaiverExpense, CreditAccountCode: CodeReceivable, JournalRef: "WAIVER", StudentSide: StudentCredit},
		{Event: EventUniformSale, DebitAccountCode: CodeReceivable, CreditAccountCode: CodeUniformRevenue, JournalRef: "UNIFORM", StudentSide: StudentDebit},
		{Event: EventTransportCharge, DebitAccountCode: CodeReceivable, CreditAccountCode: CodeTransportRevenue, JournalRef: "TRANSPORT", StudentSide: StudentDebit},
		{Event: EventRefund, DebitAccountCode: CodeReceivable, CreditAccountCode: CodeCash, JournalRef: "REFUND", StudentSide: StudentDebit},
	}

	byEvent := make(map[EventKind]PostingRule, len(rules))
	for _, r := range rules {
		byEvent[r.Event] = r
	}
	return byEvent
}
