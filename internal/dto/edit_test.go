package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/tawhid3482/geniustutors-console/internal/models"
)

func TestValidateChanges(t *testing.T) {
	v := validator.New()

	assert.NoError(t, ValidateChanges(v, models.KindTutor, map[string]any{"status": "approved", "verified": true}))
	assert.NoError(t, ValidateChanges(v, models.KindTutor, map[string]any{"subjects": []string{"Physics"}}))
	assert.NoError(t, ValidateChanges(v, models.KindTuitionRequest, map[string]any{"status": "Completed"}))
	assert.NoError(t, ValidateChanges(v, models.KindNotice, map[string]any{"title": "Eid holidays"}))

	assert.Error(t, ValidateChanges(v, models.KindTutor, map[string]any{"status": "archived"}))
	assert.Error(t, ValidateChanges(v, models.KindTutor, map[string]any{"verified": "yes"}))
	assert.Error(t, ValidateChanges(v, models.KindTutor, map[string]any{"salary": 10}))
	assert.Error(t, ValidateChanges(v, models.KindTutor, map[string]any{"subjects": []string{""}}))
	assert.Error(t, ValidateChanges(v, models.KindTuitionRequest, map[string]any{"status": "completed"}))
	assert.Error(t, ValidateChanges(v, models.KindDemoClass, map[string]any{}))
	assert.Error(t, ValidateChanges(v, models.EntityKind("payments"), map[string]any{"status": "paid"}))
}
