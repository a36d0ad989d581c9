package analysis

import (
	"reflect"
	"testing"
)

func values(in ...any) []*float64 {
	out := make([]*float64, len(in))
	for i, v := range in {
		if v != nil {
			out[i] = ptr(float64(v.(int)))
		}
	}
	return out
}

func deref(in []*float64) []any {
	out := make([]any, len(in))
	for i, v := range in {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		in   []*float64
		want []any
	}{
		{"interior gap", values(10, nil, nil, 40), []any{10.0, 20.0, 30.0, 40.0}},
		{"leading gap", values(nil, nil, 5, 8), []any{5.0, 5.0, 5.0, 8.0}},
		{"trailing gap", values(5, 8, nil, nil), []any{5.0, 8.0, 8.0, 8.0}},
		{"all nil", values(nil, nil), []any{nil, nil}},
		{"no gap", values(1, 2), []any{1.0, 2.0}},
	}

	for _, tt := range tests {
		got := deref(Interpolate(tt.in))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestInterpolateLeavesInputUntouched(t *testing.T) {
	in := values(10, nil, 30)
	Interpolate(in)
	if in[1] != nil {
		t.Errorf("Expected input gap to stay nil, got %v", *in[1])
	}
}

func TestBlendAveragesInterpolatedParts(t *testing.T) {
	a := DateSeries{"2024-01-01": 10, "2024-01-03": 30}
	b := DateSeries{"2024-01-02": 40}

	got := Blend([]DateSeries{a, b})
	want := DateSeries{"2024-01-01": 25, "2024-01-02": 30, "2024-01-03": 35}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestBlendOmitsDatesWithoutValues(t *testing.T) {
	got := Blend([]DateSeries{{}, {}})
	if len(got) != 0 {
		t.Errorf("Expected empty blend, got %v", got)
	}
}

func TestCompareLeavesUncoveredDatesNil(t *testing.T) {
	cmp, err := Compare([]Entity{
		{Label: "fine", Parts: []DateSeries{{"2024-01-01": 12, "2024-01-03": 14}}},
		{Label: "coarse", Parts: []DateSeries{{"2024-01-02": 3}}},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(cmp.Dates, []string{"2024-01-01", "2024-01-02", "2024-01-03"}) {
		t.Errorf("Unexpected axis %v", cmp.Dates)
	}
	if got := deref(cmp.Series[0].Values); !reflect.DeepEqual(got, []any{12.0, nil, 14.0}) {
		t.Errorf("Expected gap to stay nil, got %v", got)
	}
	if got := deref(cmp.Series[1].Values); !reflect.DeepEqual(got, []any{nil, 3.0, nil}) {
		t.Errorf("Expected single point series, got %v", got)
	}
}

func TestCompareRejectsTooManyEntities(t *testing.T) {
	entities := make([]Entity, MaxCompareEntities+1)
	if _, err := Compare(entities); err == nil {
		t.Error("Expected error for 6 entities, got nil")
	}
	if _, err := Compare(nil); err == nil {
		t.Error("Expected error for no entities, got nil")
	}
}
