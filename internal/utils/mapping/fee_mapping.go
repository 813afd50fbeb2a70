package mapping

import (
	"github.com/openedu/school_ledger_app/internal/core/domain"
	"github.com/openedu/school_ledger_app/internal/models"
)

// ToDomainFeeStructure converts a db fee structure to the domain representation.
func ToDomainFeeStructure(m models.FeeStructure) domain.FeeStructure {
	return domain.FeeStructure{
		FeeStructureID: m.FeeStructureID,
		Kind:           domain.FeeKind(m.Kind),
		Term:           m.Term,
		AcademicYear:   m.AcademicYear,
		Amount:         m.Amount,
		CurrencyCode:   m.CurrencyCode,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelFeeStructure converts a domain fee structure to its db representation.
func ToModelFeeStructure(d domain.FeeStructure) models.FeeStructure {
	return models.FeeStructure{
		FeeStructureID: d.FeeStructureID,
		Kind:           string(d.Kind),
		Term:           d.Term,
		AcademicYear:   d.AcademicYear,
		Amount:         d.Amount,
		CurrencyCode:   d.CurrencyCode,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRoom converts a db room to the domain representation.
func ToDomainRoom(m models.Room) domain.Room {
	return domain.Room{
		RoomID:      m.RoomID,
		Name:        m.Name,
		Capacity:    m.Capacity,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEnrollment converts a db enrollment to the domain representation.
func ToDomainEnrollment(m models.Enrollment) domain.Enrollment {
	roomID := ""
	if m.RoomID != nil {
		roomID = *m.RoomID
	}
	boardingJournalID := ""
	if m.BoardingJournalID != nil {
		boardingJournalID = *m.BoardingJournalID
	}
	return domain.Enrollment{
		EnrollmentID:      m.EnrollmentID,
		StudentID:         m.StudentID,
		RoomID:            roomID,
		Term:              m.Term,
		AcademicYear:      m.AcademicYear,
		JournalID:         m.JournalID,
		BoardingJournalID: boardingJournalID,
		Status:            domain.EnrollmentStatus(m.Status),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEnrollment converts a domain enrollment to its db representation.
func ToModelEnrollment(d domain.Enrollment) models.Enrollment {
	var roomID *string
	if d.RoomID != "" {
		roomID = &d.RoomID
	}
	var boardingJournalID *string
	if d.BoardingJournalID != "" {
		boardingJournalID = &d.BoardingJournalID
	}
	return models.Enrollment{
		EnrollmentID:      d.EnrollmentID,
		StudentID:         d.StudentID,
		RoomID:            roomID,
		Term:              d.Term,
		AcademicYear:      d.AcademicYear,
		JournalID:         d.JournalID,
		BoardingJournalID: boardingJournalID,
		Status:            string(d.Status),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}
