package core

import (
	"errors"
	"testing"
)

func TestEnumerate(t *testing.T) {
	tests := []struct {
		name       string
		start, end [2]int // month index, year
	}{
		{"single period", [2]int{5, 2010}, [2]int{5, 2010}},
		{"within one year", [2]int{0, 2000}, [2]int{2, 2000}},
		{"across year boundary", [2]int{10, 1999}, [2]int{1, 2000}},
		{"several years", [2]int{3, 1947}, [2]int{8, 1952}},
		{"full year", [2]int{0, 2020}, [2]int{11, 2020}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := mustPeriod(t, tt.start[0], tt.start[1])
			end := mustPeriod(t, tt.end[0], tt.end[1])

			got, err := Enumerate(start, end)
			if err != nil {
				t.Fatalf("Enumerate() error = %v", err)
			}

			wantLen := (end.Year()-start.Year())*12 + (end.MonthIndex() - start.MonthIndex()) + 1
			if len(got) != wantLen {
				t.Fatalf("Enumerate() len = %d, want %d", len(got), wantLen)
			}
			if MonthsBetween(start, end) != wantLen {
				t.Errorf("MonthsBetween() = %d, want %d", MonthsBetween(start, end), wantLen)
			}
			if got[0] != start {
				t.Errorf("first = %v, want %v", got[0], start)
			}
			if got[len(got)-1] != end {
				t.Errorf("last = %v, want %v", got[len(got)-1], end)
			}
			for i := 1; i < len(got); i++ {
				if !got[i-1].Before(got[i]) {
					t.Fatalf("sequence not strictly increasing at %d: %v then %v", i, got[i-1], got[i])
				}
				if got[i-1].Next() != got[i] {
					t.Fatalf("gap between %v and %v", got[i-1], got[i])
				}
			}
		})
	}
}

func TestEnumerate_Scenario(t *testing.T) {
	got, err := Enumerate(mustPeriod(t, 0, 2000), mustPeriod(t, 2, 2000))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	want := []string{"Gennaio 2000", "Febbraio 2000", "Marzo 2000"}
	if len(got) != len(want) {
		t.Fatalf("Enumerate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("Enumerate()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEnumerate_Deterministic(t *testing.T) {
	start, end := mustPeriod(t, 7, 2001), mustPeriod(t, 3, 2003)
	first, _ := Enumerate(start, end)
	second, _ := Enumerate(start, end)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("index %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestEnumerate_InvalidRange(t *testing.T) {
	_, err := Enumerate(mustPeriod(t, 2, 2000), mustPeriod(t, 1, 2000))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Enumerate() error = %v, want %v", err, ErrInvalidRange)
	}
}
