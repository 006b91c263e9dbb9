package model

import (
	"sort"
	"strings"
	"time"
)

type GroupBy string

const (
	GroupByDay  GroupBy = "day"
	GroupByWeek GroupBy = "week"
)

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the range, inclusive on both
// bounds. Comparison is by calendar day so a record stamped mid-day still
// matches a range whose To is midnight of the same day.
func (r DateRange) Contains(t time.Time) bool {
	day := t.UTC().Truncate(24 * time.Hour)
	from := r.From.UTC().Truncate(24 * time.Hour)
	to := r.To.UTC().Truncate(24 * time.Hour)
	return !day.Before(from) && !day.After(to)
}

// FilterSpec narrows a record set by date range, region set and state set.
// An empty set leaves that dimension unrestricted. Specs are values built
// once per query and never mutated.
type FilterSpec struct {
	Range   DateRange `json:"range"`
	Regions []string  `json:"regions,omitempty"`
	States  []string  `json:"states,omitempty"`
	GroupBy GroupBy   `json:"group_by,omitempty"`
}

func (f FilterSpec) ClampRange(defaultRange, maxRange int) FilterSpec {
	if f.Range.To.IsZero() {
		f.Range.To = time.Now()
	}
	if f.Range.From.IsZero() {
		f.Range.From = f.Range.To.AddDate(0, 0, -defaultRange)
	}
	if f.Range.To.Before(f.Range.From) {
		f.Range.From = f.Range.To.Add(-24 * time.Hour)
	}
	maxDuration := time.Duration(maxRange) * 24 * time.Hour
	if f.Range.To.Sub(f.Range.From) > maxDuration {
		f.Range.From = f.Range.To.Add(-maxDuration)
	}
	return f
}

func (f FilterSpec) Bucket() GroupBy {
	if f.GroupBy == GroupByWeek {
		return GroupByWeek
	}
	return GroupByDay
}

// Key returns the canonical serialization of the spec used as a cache key
// component. Sets are deduplicated, lowercased and sorted so two specs naming
// the same filters in different order produce the same key.
func (f FilterSpec) Key() string {
	var b strings.Builder
	b.WriteString(f.Range.From.UTC().Format("2006-01-02"))
	b.WriteByte('/')
	b.WriteString(f.Range.To.UTC().Format("2006-01-02"))
	b.WriteString("|r=")
	b.WriteString(strings.Join(CanonicalSet(f.Regions), ","))
	b.WriteString("|s=")
	b.WriteString(strings.Join(CanonicalSet(f.States), ","))
	b.WriteString("|g=")
	b.WriteString(string(f.Bucket()))
	return b.String()
}

// CanonicalSet trims, lowercases, deduplicates and sorts a filter set.
func CanonicalSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
