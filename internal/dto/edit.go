package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tawhid3482/geniustutors-console/internal/models"
)

// ProposeChangesRequest records proposed field values on an edit surface.
type ProposeChangesRequest struct {
	Changes map[string]any `json:"changes" validate:"required,min=1"`
}

// TagOp is one tag editor operation.
type TagOp string

const (
	TagAdd       TagOp = "add"
	TagAddCustom TagOp = "add_custom"
	TagRemove    TagOp = "remove"
)

// TagRequest applies one operation to a tag group.
type TagRequest struct {
	Op    TagOp  `json:"op" validate:"required,oneof=add add_custom remove"`
	Value string `json:"value" validate:"required,max=100"`
}

// TutorChanges are the editable tutor fields.
type TutorChanges struct {
	Status             *string  `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Verified           *bool    `json:"verified"`
	Genius             *bool    `json:"genius"`
	Premium            *bool    `json:"premium"`
	District           *string  `json:"district" validate:"omitempty,max=100"`
	Area               *string  `json:"area" validate:"omitempty,max=100"`
	Subjects           []string `json:"subjects" validate:"omitempty,dive,required,max=100"`
	Categories         []string `json:"categories" validate:"omitempty,dive,required,max=100"`
	Classes            []string `json:"classes" validate:"omitempty,dive,required,max=100"`
	PreferredDistricts []string `json:"preferred_districts" validate:"omitempty,dive,required,max=100"`
	PreferredAreas     []string `json:"preferred_areas" validate:"omitempty,dive,required,max=100"`
}

// TuitionRequestChanges are the editable tuition request fields.
type TuitionRequestChanges struct {
	Status          *string  `json:"status" validate:"omitempty,oneof=Active Completed Cancelled Inactive"`
	AssignedTutorID *string  `json:"assigned_tutor_id" validate:"omitempty,max=64"`
	District        *string  `json:"district" validate:"omitempty,max=100"`
	Area            *string  `json:"area" validate:"omitempty,max=100"`
	Medium          *string  `json:"medium" validate:"omitempty,max=50"`
	Class           *string  `json:"class" validate:"omitempty,max=50"`
	Subjects        []string `json:"subjects" validate:"omitempty,dive,required,max=100"`
}

// DemoClassChanges are the editable demo class fields.
type DemoClassChanges struct {
	Status *string `json:"status" validate:"required,oneof=pending accepted rejected completed cancelled"`
}

// AppointmentLetterChanges are the editable appointment letter fields.
type AppointmentLetterChanges struct {
	Status *string `json:"status" validate:"required,oneof=pending sent accepted declined"`
}

// NoticeChanges are the editable notice fields.
type NoticeChanges struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Body     *string `json:"body" validate:"omitempty,min=1"`
	Audience *string `json:"audience" validate:"omitempty,max=50"`
	Status   *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func changesTarget(kind models.EntityKind) (any, error) {
	switch kind {
	case models.KindTutor:
		return &TutorChanges{}, nil
	case models.KindTuitionRequest:
		return &TuitionRequestChanges{}, nil
	case models.KindDemoClass:
		return &DemoClassChanges{}, nil
	case models.KindAppointmentLetter:
		return &AppointmentLetterChanges{}, nil
	case models.KindNotice:
		return &NoticeChanges{}, nil
	}
	return nil, fmt.Errorf("unsupported entity kind %q", kind)
}

// ValidateChanges decodes changes into the typed payload of kind and validates
// it. Unknown fields and wrongly typed values are rejected.
func ValidateChanges(validate *validator.Validate, kind models.EntityKind, changes map[string]any) error {
	target, err := changesTarget(kind)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode changes: %w", err)
	}
	return validate.Struct(target)
}
