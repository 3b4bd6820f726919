package models

import (
	"encoding/json"
	"strings"
	"time"
)

// RequestStatus is the lifecycle of a tuition request.
type RequestStatus string

const (
	RequestActive    RequestStatus = "Active"
	RequestCompleted RequestStatus = "Completed"
	RequestCancelled RequestStatus = "Cancelled"
	RequestInactive  RequestStatus = "Inactive"
)

// RequestStatuses lists the valid tuition request states.
var RequestStatuses = []string{string(RequestActive), string(RequestCompleted), string(RequestCancelled), string(RequestInactive)}

// TuitionRequest is a guardian's request for a tutor.
type TuitionRequest struct {
	ID              string        `json:"id"`
	RequestID       string        `json:"request_id"`
	StudentName     string        `json:"student_name"`
	Phone           string        `json:"phone"`
	District        string        `json:"district"`
	Area            string        `json:"area"`
	Subjects        []string      `json:"subjects"`
	Class           string        `json:"class"`
	Medium          string        `json:"medium"`
	Status          RequestStatus `json:"status"`
	AssignedTutorID string        `json:"assigned_tutor_id,omitempty"`
	Created         time.Time     `json:"created_at"`
}

// UnmarshalJSON decodes the record and pins Status to a known state.
func (r *TuitionRequest) UnmarshalJSON(data []byte) error {
	type plain TuitionRequest
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = TuitionRequest(raw)
	r.Status = RequestStatus(normalizeStatus(string(r.Status), RequestStatuses))
	return nil
}

func (r TuitionRequest) RecordID() string     { return r.ID }
func (r TuitionRequest) CreatedAt() time.Time { return r.Created }

func (r TuitionRequest) SearchText() []string {
	return []string{r.RequestID, r.StudentName, r.Phone, r.District, r.Area, strings.Join(r.Subjects, " ")}
}

func (r TuitionRequest) Attribute(key string) (string, bool) {
	switch key {
	case "district":
		return attr(r.District)
	case "area":
		return attr(r.Area)
	case "status":
		return attr(string(r.Status))
	case "medium":
		return attr(r.Medium)
	case "class":
		return attr(r.Class)
	}
	return "", false
}

// Fields returns the editable fields of the request.
func (r TuitionRequest) Fields() map[string]any {
	return map[string]any{
		"status":            string(r.Status),
		"assigned_tutor_id": r.AssignedTutorID,
		"district":          r.District,
		"area":              r.Area,
		"medium":            r.Medium,
		"class":             r.Class,
		"subjects":          append([]string{}, r.Subjects...),
	}
}

// Columns implements Entity.
func (r TuitionRequest) Columns() ([]string, []string) {
	return []string{"Request ID", "Student", "Phone", "District", "Area", "Class", "Medium", "Subjects", "Status", "Tutor", "Posted"},
		[]string{r.RequestID, r.StudentName, r.Phone, r.District, r.Area, r.Class, r.Medium, strings.Join(r.Subjects, ", "),
			string(r.Status), r.AssignedTutorID, r.Created.Format("2006-01-02")}
}
