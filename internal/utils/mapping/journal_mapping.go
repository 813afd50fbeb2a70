package mapping

import (
	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/models"
)

// ToModelJournal converts a domain journal header to its db representation.
func ToModelJournal(d domain.Journal) models.Journal {
	return models.Journal{
		JournalID:          d.JournalID,
		JournalRef:         d.JournalRef,
		JournalDate:        d.JournalDate,
		Description:        d.Description,
		Reference:          d.Reference,
		Status:             string(d.Status),
		OriginalJournalID:  d.OriginalJournalID,
		ReversingJournalID: d.ReversingJournalID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournal converts a db journal header to the domain representation.
func ToDomainJournal(m models.Journal) domain.Journal {
	return domain.Journal{
		JournalID:          m.JournalID,
		JournalRef:         m.JournalRef,
		JournalDate:        m.JournalDate,
		Description:        m.Description,
		Reference:          m.Reference,
		Status:             domain.JournalStatus(m.Status),
		OriginalJournalID:  m.OriginalJournalID,
		ReversingJournalID: m.ReversingJournalID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain line to its db representation.
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:       d.LineID,
		JournalID:    d.JournalID,
		AccountID:    d.AccountID,
		Debit:        d.Debit,
		Credit:       d.Credit,
		CurrencyCode: d.CurrencyCode,
		Description:  d.Description,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a db line to the domain representation.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:       m.LineID,
		JournalID:    m.JournalID,
		AccountID:    m.AccountID,
		Debit:        m.Debit,
		Credit:       m.Credit,
		CurrencyCode: m.CurrencyCode,
		Description:  m.Description,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of db lines.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}

// ToDomainAccountBalance converts a db balance row to the domain representation.
func ToDomainAccountBalance(m models.AccountBalance) domain.AccountBalance {
	return domain.AccountBalance{
		AccountID:    m.AccountID,
		CurrencyCode: m.CurrencyCode,
		Balance:      m.Balance,
		AsOf:         m.AsOf,
	}
}
