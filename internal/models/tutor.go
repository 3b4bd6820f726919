package models

import (
	"encoding/json"
	"strings"
	"time"
)

// TutorStatus is the review state of a tutor application.
type TutorStatus string

const (
	TutorPending  TutorStatus = "pending"
	TutorApproved TutorStatus = "approved"
	TutorRejected TutorStatus = "rejected"
)

// TutorStatuses lists the valid tutor states.
var TutorStatuses = []string{string(TutorPending), string(TutorApproved), string(TutorRejected)}

// Tutor is a tutor profile as returned by the backend.
type Tutor struct {
	ID         string   `json:"id"`
	TutorID    string   `json:"tutor_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	District   string   `json:"district"`
	Area       string   `json:"area"`
	Subjects   []string `json:"subjects"`
	Categories []string `json:"categories"`
	Classes    []string `json:"classes"`

	// Districts and areas the tutor is willing to teach in.
	PreferredDistricts []string `json:"preferred_districts"`
	PreferredAreas     []string `json:"preferred_areas"`

	Status   TutorStatus `json:"status"`
	Verified bool        `json:"verified"`
	Genius   bool        `json:"genius"`
	Premium  bool        `json:"premium"`
	Created  time.Time   `json:"created_at"`
}

// UnmarshalJSON decodes the record and pins Status to a known state.
func (t *Tutor) UnmarshalJSON(data []byte) error {
	type plain Tutor
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Tutor(raw)
	t.Status = TutorStatus(normalizeStatus(string(t.Status), TutorStatuses))
	return nil
}

func (t Tutor) RecordID() string     { return t.ID }
func (t Tutor) CreatedAt() time.Time { return t.Created }

func (t Tutor) SearchText() []string {
	return []string{t.Name, t.Email, t.TutorID, t.Phone, t.District, strings.Join(t.Subjects, " ")}
}

func (t Tutor) Attribute(key string) (string, bool) {
	switch key {
	case "district":
		return attr(t.District)
	case "area":
		return attr(t.Area)
	case "status":
		return attr(string(t.Status))
	case "verified":
		return flag(t.Verified), true
	case "genius":
		return flag(t.Genius), true
	case "premium":
		return flag(t.Premium), true
	}
	return "", false
}

// Fields returns the editable fields of the tutor.
func (t Tutor) Fields() map[string]any {
	return map[string]any{
		"status":     string(t.Status),
		"verified":   t.Verified,
		"genius":     t.Genius,
		"premium":    t.Premium,
		"district":   t.District,
		"area":       t.Area,
		"subjects":   append([]string{}, t.Subjects...),
		"categories": append([]string{}, t.Categories...),
		"classes":    append([]string{}, t.Classes...),

		"preferred_districts": append([]string{}, t.PreferredDistricts...),
		"preferred_areas":     append([]string{}, t.PreferredAreas...),
	}
}

// Columns implements Entity.
func (t Tutor) Columns() ([]string, []string) {
	return []string{"Tutor ID", "Name", "Email", "Phone", "District", "Area", "Subjects", "Status", "Verified", "Genius", "Premium", "Joined"},
		[]string{t.TutorID, t.Name, t.Email, t.Phone, t.District, t.Area, strings.Join(t.Subjects, ", "), string(t.Status),
			flag(t.Verified), flag(t.Genius), flag(t.Premium), t.Created.Format("2006-01-02")}
}
