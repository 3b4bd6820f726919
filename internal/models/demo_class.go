package models

import (
	"encoding/json"
	"time"
)

// DemoStatus is the state of a demo class booking.
type DemoStatus string

const (
	DemoPending   DemoStatus = "pending"
	DemoAccepted  DemoStatus = "accepted"
	DemoRejected  DemoStatus = "rejected"
	DemoCompleted DemoStatus = "completed"
	DemoCancelled DemoStatus = "cancelled"
)

// DemoStatuses lists the valid demo class states.
var DemoStatuses = []string{string(DemoPending), string(DemoAccepted), string(DemoRejected), string(DemoCompleted), string(DemoCancelled)}

// DemoClass is a trial session between a tutor and a student.
type DemoClass struct {
	ID          string     `json:"id"`
	TutorName   string     `json:"tutor_name"`
	StudentName string     `json:"student_name"`
	Subject     string     `json:"subject"`
	District    string     `json:"district"`
	Status      DemoStatus `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Created     time.Time  `json:"created_at"`
}

// UnmarshalJSON decodes the record and pins Status to a known state.
func (d *DemoClass) UnmarshalJSON(data []byte) error {
	type plain DemoClass
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = DemoClass(raw)
	d.Status = DemoStatus(normalizeStatus(string(d.Status), DemoStatuses))
	return nil
}

func (d DemoClass) RecordID() string     { return d.ID }
func (d DemoClass) CreatedAt() time.Time { return d.Created }

func (d DemoClass) SearchText() []string {
	return []string{d.ID, d.TutorName, d.StudentName, d.Subject, d.District}
}

func (d DemoClass) Attribute(key string) (string, bool) {
	switch key {
	case "district":
		return attr(d.District)
	case "status":
		return attr(string(d.Status))
	case "subject":
		return attr(d.Subject)
	}
	return "", false
}

func (d DemoClass) Fields() map[string]any {
	return map[string]any{"status": string(d.Status)}
}

func (d DemoClass) Columns() ([]string, []string) {
	return []string{"ID", "Tutor", "Student", "Subject", "District", "Status", "Scheduled"},
		[]string{d.ID, d.TutorName, d.StudentName, d.Subject, d.District, string(d.Status), d.ScheduledAt.Format("2006-01-02 15:04")}
}
