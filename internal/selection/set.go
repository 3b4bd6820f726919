package selection

import (
	"strings"

	"github.com/tawhid3482/geniustutors-console/internal/filter"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

// Set is an ordered collection of unique strings preserving insertion order.
type Set struct {
	values []string
	index  map[string]struct{}
}

// NewSet builds a Set from values, dropping duplicates and blanks.
func NewSet(values ...string) *Set {
	s := &Set{index: make(map[string]struct{})}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts value. It reports whether the set changed.
func (s *Set) Add(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[value]; ok {
		return false
	}
	s.index[value] = struct{}{}
	s.values = append(s.values, value)
	return true
}

// AddCustom inserts a free-text value that need not exist among the options.
func (s *Set) AddCustom(value string) error {
	if strings.TrimSpace(value) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "value is required")
	}
	s.Add(value)
	return nil
}

// Remove deletes value. It reports whether the set changed.
func (s *Set) Remove(value string) bool {
	value = strings.TrimSpace(value)
	if _, ok := s.index[value]; !ok {
		return false
	}
	delete(s.index, value)
	for i, v := range s.values {
		if v == value {
			s.values = append(s.values[:i], s.values[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports membership.
func (s *Set) Contains(value string) bool {
	_, ok := s.index[strings.TrimSpace(value)]
	return ok
}

// Len returns the number of values.
func (s *Set) Len() int {
	return len(s.values)
}

// Values returns a copy in insertion order.
func (s *Set) Values() []string {
	return append([]string{}, s.values...)
}

// Replace swaps the content for values.
func (s *Set) Replace(values []string) {
	s.values = nil
	s.index = make(map[string]struct{})
	for _, v := range values {
		s.Add(v)
	}
}

// Retain keeps only the values accepted by keep and returns the removed ones.
func (s *Set) Retain(keep func(string) bool) []string {
	var removed []string
	kept := s.values[:0]
	for _, v := range s.values {
		if keep(v) {
			kept = append(kept, v)
			continue
		}
		delete(s.index, v)
		removed = append(removed, v)
	}
	s.values = kept
	return removed
}

// Search narrows options to those containing query, case-insensitively.
func Search(options []string, query string) []string {
	query = strings.TrimSpace(query)
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if filter.ContainsFold(opt, query) {
			out = append(out, opt)
		}
	}
	return out
}
