package backend

import (
	"context"
	"net/http"

	"github.com/tawhid3482/geniustutors-console/internal/models"
)

// Taxonomy reads the option catalogues used by tag editors.
type Taxonomy struct {
	client *Client
}

// NewTaxonomy wraps client.
func NewTaxonomy(client *Client) *Taxonomy {
	return &Taxonomy{client: client}
}

// Categories returns every category with its subjects and classes.
func (t *Taxonomy) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := t.client.Do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Districts returns every district with its areas.
func (t *Taxonomy) Districts(ctx context.Context) ([]models.District, error) {
	var out []models.District
	if err := t.client.Do(ctx, http.MethodGet, "/districts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
