package model

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFilterSpecKeyCanonical(t *testing.T) {
	rng := DateRange{From: date("2024-01-01"), To: date("2024-01-31")}

	tests := []struct {
		name string
		a    FilterSpec
		b    FilterSpec
		same bool
	}{
		{
			"ReorderedRegions",
			FilterSpec{Range: rng, Regions: []string{"South", "North"}},
			FilterSpec{Range: rng, Regions: []string{"North", "South"}},
			true,
		},
		{
			"CaseAndDuplicates",
			FilterSpec{Range: rng, States: []string{"SP", "sp", "RJ"}},
			FilterSpec{Range: rng, States: []string{"rj", "SP"}},
			true,
		},
		{
			"DifferentRegions",
			FilterSpec{Range: rng, Regions: []string{"South"}},
			FilterSpec{Range: rng, Regions: []string{"North"}},
			false,
		},
		{
			"DifferentGroupBy",
			FilterSpec{Range: rng, GroupBy: GroupByDay},
			FilterSpec{Range: rng, GroupBy: GroupByWeek},
			false,
		},
		{
			"EmptyGroupByDefaultsToDay",
			FilterSpec{Range: rng},
			FilterSpec{Range: rng, GroupBy: GroupByDay},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Key() == tt.b.Key(); got != tt.same {
				t.Errorf("keys %q vs %q: equal = %v, want %v", tt.a.Key(), tt.b.Key(), got, tt.same)
			}
		})
	}
}

func TestDateRangeContainsInclusive(t *testing.T) {
	rng := DateRange{From: date("2024-01-10"), To: date("2024-01-20")}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"BeforeRange", date("2024-01-09"), false},
		{"OnFrom", date("2024-01-10"), true},
		{"Inside", date("2024-01-15"), true},
		{"OnTo", date("2024-01-20"), true},
		{"MidDayOnTo", date("2024-01-20").Add(13 * time.Hour), true},
		{"AfterRange", date("2024-01-21"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rng.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestClampRange(t *testing.T) {
	t.Run("ZeroRangeGetsDefault", func(t *testing.T) {
		spec := FilterSpec{}.ClampRange(7, 90)
		got := spec.Range.To.Sub(spec.Range.From)
		if got != 7*24*time.Hour {
			t.Errorf("default range = %v, want 168h", got)
		}
	})

	t.Run("InvertedRangeFixed", func(t *testing.T) {
		spec := FilterSpec{Range: DateRange{From: date("2024-02-01"), To: date("2024-01-01")}}.ClampRange(7, 90)
		if spec.Range.To.Before(spec.Range.From) {
			t.Errorf("range still inverted: %v after %v", spec.Range.From, spec.Range.To)
		}
	})

	t.Run("OversizedRangeClamped", func(t *testing.T) {
		spec := FilterSpec{Range: DateRange{From: date("2020-01-01"), To: date("2024-01-01")}}.ClampRange(7, 90)
		if got := spec.Range.To.Sub(spec.Range.From); got > 90*24*time.Hour {
			t.Errorf("range = %v, want at most 2160h", got)
		}
	})
}
