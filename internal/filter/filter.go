package filter

import (
	"strings"
	"time"
)

// All is the sentinel value that disables a categorical filter.
const All = "all"

const day = 24 * time.Hour

// Record is implemented by every entity that can be listed in a view.
type Record interface {
	RecordID() string
	// SearchText returns the fields matched by free-text search.
	SearchText() []string
	// Attribute returns the value for a categorical filter key.
	Attribute(key string) (string, bool)
	CreatedAt() time.Time
}

// Bucket names a relative or custom date window.
type Bucket string

const (
	BucketAll     Bucket = "all"
	BucketToday   Bucket = "today"
	BucketWeek    Bucket = "week"
	BucketMonth   Bucket = "month"
	BucketQuarter Bucket = "quarter"
	BucketYear    Bucket = "year"
	BucketCustom  Bucket = "custom"
)

var bucketDays = map[Bucket]int{
	BucketWeek:    7,
	BucketMonth:   30,
	BucketQuarter: 90,
	BucketYear:    365,
}

// ParseBucket maps a raw string onto a Bucket. Unknown values are rejected.
func ParseBucket(raw string) (Bucket, bool) {
	b := Bucket(strings.ToLower(strings.TrimSpace(raw)))
	switch b {
	case "":
		return BucketAll, true
	case BucketAll, BucketToday, BucketWeek, BucketMonth, BucketQuarter, BucketYear, BucketCustom:
		return b, true
	}
	return "", false
}

// DateRange constrains records by creation time.
type DateRange struct {
	Bucket Bucket    `json:"bucket"`
	Start  time.Time `json:"start,omitempty"`
	End    time.Time `json:"end,omitempty"`
}

// MatchMode selects how a categorical value is compared.
type MatchMode int

const (
	Exact MatchMode = iota
	Contains
)

// Schema declares the match mode for each categorical key.
type Schema map[string]MatchMode

// Mode returns the declared mode for key, Exact when undeclared.
func (s Schema) Mode(key string) MatchMode {
	if s == nil {
		return Exact
	}
	return s[key]
}

// State is the UI-owned filter input for one view.
type State struct {
	Search     string            `json:"search"`
	Categories map[string]string `json:"categories,omitempty"`
	DateRange  DateRange         `json:"date_range"`
}

// Clone returns a deep copy so callers can't share the categories map.
func (s State) Clone() State {
	out := s
	if s.Categories != nil {
		out.Categories = make(map[string]string, len(s.Categories))
		for k, v := range s.Categories {
			out.Categories[k] = v
		}
	}
	return out
}

// Set assigns a categorical value. "all" or empty clears it.
func (s *State) Set(key, value string) {
	value = strings.TrimSpace(value)
	if IsAll(value) {
		delete(s.Categories, key)
		return
	}
	if s.Categories == nil {
		s.Categories = make(map[string]string)
	}
	s.Categories[key] = value
}

// IsAll reports whether value leaves a filter unconstrained.
func IsAll(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, All)
}

// ContainsFold is a case-insensitive substring test. An empty needle always matches.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Matches reports whether rec satisfies every active predicate in state.
func Matches(rec Record, state State, schema Schema, now time.Time) bool {
	return matchesSearch(rec, state.Search) &&
		matchesCategories(rec, state.Categories, schema) &&
		matchesDate(rec.CreatedAt(), state.DateRange, now)
}

// Apply returns the records matching state in their original order.
func Apply[T Record](items []T, state State, schema Schema, now time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item, state, schema, now) {
			out = append(out, item)
		}
	}
	return out
}

func matchesSearch(rec Record, search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	for _, field := range rec.SearchText() {
		if ContainsFold(field, search) {
			return true
		}
	}
	return false
}

func matchesCategories(rec Record, categories map[string]string, schema Schema) bool {
	for key, want := range categories {
		if IsAll(want) {
			continue
		}
		got, ok := rec.Attribute(key)
		if !ok {
			return false
		}
		switch schema.Mode(key) {
		case Contains:
			if !ContainsFold(got, want) {
				return false
			}
		default:
			if !strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want)) {
				return false
			}
		}
	}
	return true
}

func matchesDate(ts time.Time, r DateRange, now time.Time) bool {
	switch r.Bucket {
	case "", BucketAll:
		return true
	case BucketToday:
		return sameDay(ts.In(now.Location()), now)
	case BucketCustom:
		if !r.Start.IsZero() && ts.Before(r.Start) {
			return false
		}
		if !r.End.IsZero() && ts.After(endOfDay(r.End)) {
			return false
		}
		return true
	}
	limit, ok := bucketDays[r.Bucket]
	if !ok {
		return true
	}
	// Rolling buckets look back from now; future-dated rows fall outside them.
	days := DaysBetween(ts, now)
	return days >= 0 && days <= limit
}

// DaysBetween returns floor((now - ts) / 24h).
func DaysBetween(ts, now time.Time) int {
	diff := now.Sub(ts)
	days := int(diff / day)
	if diff < 0 && diff%day != 0 {
		days--
	}
	return days
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
