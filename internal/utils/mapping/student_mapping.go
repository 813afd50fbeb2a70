package mapping

import (
	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/models"
)

// ToModelStudent converts a domain student to its db representation.
func ToModelStudent(d domain.Student) models.Student {
	return models.Student{
		StudentID:   d.StudentID,
		FullName:    d.FullName,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStudent converts a db student to the domain representation.
func ToDomainStudent(m models.Student) domain.Student {
	return domain.Student{
		StudentID:   m.StudentID,
		FullName:    m.FullName,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStudentTransaction converts a domain sub-ledger transaction to its db representation.
func ToModelStudentTransaction(d domain.StudentTransaction) models.StudentTransaction {
	return models.StudentTransaction{
		TransactionID:         d.TransactionID,
		StudentID:             d.StudentID,
		TxnType:               string(d.TxnType),
		Amount:                d.Amount,
		Description:           d.Description,
		Term:                  d.Term,
		AcademicYear:          d.AcademicYear,
		JournalID:             d.JournalID,
		ReversesTransactionID: d.ReversesTransactionID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStudentTransaction converts a db sub-ledger transaction to the domain representation.
func ToDomainStudentTransaction(m models.StudentTransaction) domain.StudentTransaction {
	return domain.StudentTransaction{
		TransactionID:         m.TransactionID,
		StudentID:             m.StudentID,
		TxnType:               domain.StudentTxnType(m.TxnType),
		Amount:                m.Amount,
		Description:           m.Description,
		Term:                  m.Term,
		AcademicYear:          m.AcademicYear,
		JournalID:             m.JournalID,
		ReversesTransactionID: m.ReversesTransactionID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStudentTransactionSlice converts a slice of db sub-ledger transactions.
func ToDomainStudentTransactionSlice(ms []models.StudentTransaction) []domain.StudentTransaction {
	ds := make([]domain.StudentTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStudentTransaction(m)
	}
	return ds
}

// ToDomainStudentBalance converts a db student balance row.
func ToDomainStudentBalance(m models.StudentBalance) domain.StudentBalance {
	return domain.StudentBalance{
		StudentID:   m.StudentID,
		Balance:     m.Balance,
		LastUpdated: m.LastUpdated,
	}
}
