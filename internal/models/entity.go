package models

import (
	"strconv"
	"strings"

	"github.com/tawhid3482/geniustutors-console/internal/filter"
)

// EntityKind names a listable collection managed from the console.
type EntityKind string

const (
	KindTutor             EntityKind = "tutors"
	KindTuitionRequest    EntityKind = "tuition_requests"
	KindDemoClass         EntityKind = "demo_classes"
	KindAppointmentLetter EntityKind = "appointment_letters"
	KindNotice            EntityKind = "notices"
)

// EntityKinds lists every supported kind in menu order.
var EntityKinds = []EntityKind{KindTutor, KindTuitionRequest, KindDemoClass, KindAppointmentLetter, KindNotice}

// ParseEntityKind validates raw against the known kinds.
func ParseEntityKind(raw string) (EntityKind, bool) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range EntityKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Path is the backend REST path segment for the kind.
func (k EntityKind) Path() string {
	switch k {
	case KindTutor:
		return "tutors"
	case KindTuitionRequest:
		return "tuition-requests"
	case KindDemoClass:
		return "demo-classes"
	case KindAppointmentLetter:
		return "appointment-letters"
	case KindNotice:
		return "notices"
	}
	return string(k)
}

// FilterSchema declares how each categorical key of the kind is matched.
// Location keys match by substring, enumerations match exactly.
func (k EntityKind) FilterSchema() filter.Schema {
	switch k {
	case KindTutor:
		return filter.Schema{
			"district": filter.Contains,
			"area":     filter.Contains,
			"status":   filter.Exact,
			"verified": filter.Exact,
			"genius":   filter.Exact,
			"premium":  filter.Exact,
		}
	case KindTuitionRequest:
		return filter.Schema{
			"district": filter.Contains,
			"area":     filter.Contains,
			"status":   filter.Exact,
			"medium":   filter.Exact,
			"class":    filter.Exact,
		}
	case KindDemoClass, KindAppointmentLetter:
		return filter.Schema{
			"district": filter.Contains,
			"status":   filter.Exact,
			"subject":  filter.Contains,
		}
	case KindNotice:
		return filter.Schema{
			"status":   filter.Exact,
			"audience": filter.Exact,
		}
	}
	return filter.Schema{}
}

// FilterKeys returns the categorical keys accepted by the kind.
func (k EntityKind) FilterKeys() []string {
	schema := k.FilterSchema()
	keys := make([]string, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	return keys
}

// Entity is a listable record that can also be exported and edited.
type Entity interface {
	filter.Record
	// Fields returns the editable fields keyed by wire name.
	Fields() map[string]any
	// Columns returns export headers and the matching row values.
	Columns() ([]string, []string)
}

// normalizeStatus maps raw onto allowed ignoring case. Blank and unknown
// values fall back to allowed[0], the entity's first open state.
func normalizeStatus(raw string, allowed []string) string {
	raw = strings.TrimSpace(raw)
	for _, v := range allowed {
		if strings.EqualFold(raw, v) {
			return v
		}
	}
	return allowed[0]
}

func attr(value string) (string, bool) {
	return value, value != ""
}

func flag(v bool) string {
	return strconv.FormatBool(v)
}
