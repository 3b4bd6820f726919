package models

import (
	"encoding/json"
	"time"
)

// LetterStatus tracks an appointment letter sent to a tutor.
type LetterStatus string

const (
	LetterPending  LetterStatus = "pending"
	LetterSent     LetterStatus = "sent"
	LetterAccepted LetterStatus = "accepted"
	LetterDeclined LetterStatus = "declined"
)

var LetterStatuses = []string{string(LetterPending), string(LetterSent), string(LetterAccepted), string(LetterDeclined)}

// AppointmentLetter confirms a tutor's assignment to a student.
type AppointmentLetter struct {
	ID          string       `json:"id"`
	TutorName   string       `json:"tutor_name"`
	TutorEmail  string       `json:"tutor_email"`
	StudentName string       `json:"student_name"`
	Subject     string       `json:"subject"`
	District    string       `json:"district"`
	Status      LetterStatus `json:"status"`
	Created     time.Time    `json:"created_at"`
}

// UnmarshalJSON decodes the record and pins Status to a known state.
func (a *AppointmentLetter) UnmarshalJSON(data []byte) error {
	type plain AppointmentLetter
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AppointmentLetter(raw)
	a.Status = LetterStatus(normalizeStatus(string(a.Status), LetterStatuses))
	return nil
}

func (a AppointmentLetter) RecordID() string     { return a.ID }
func (a AppointmentLetter) CreatedAt() time.Time { return a.Created }

func (a AppointmentLetter) SearchText() []string {
	return []string{a.ID, a.TutorName, a.TutorEmail, a.StudentName, a.Subject, a.District}
}

func (a AppointmentLetter) Attribute(key string) (string, bool) {
	switch key {
	case "district":
		return attr(a.District)
	case "status":
		return attr(string(a.Status))
	case "subject":
		return attr(a.Subject)
	}
	return "", false
}

func (a AppointmentLetter) Fields() map[string]any {
	return map[string]any{"status": string(a.Status)}
}

func (a AppointmentLetter) Columns() ([]string, []string) {
	return []string{"ID", "Tutor", "Tutor Email", "Student", "Subject", "District", "Status", "Issued"},
		[]string{a.ID, a.TutorName, a.TutorEmail, a.StudentName, a.Subject, a.District, string(a.Status), a.Created.Format("2006-01-02")}
}
