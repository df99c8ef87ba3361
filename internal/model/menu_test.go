package model

import (
	"testing"
	"time"
)

func TestParseMealType(t *testing.T) {
	cases := []struct {
		in   string
		want MealType
		ok   bool
	}{
		{"breakfast", MealBreakfast, true},
		{"LUNCH", MealLunch, true},
		{" dinner ", MealDinner, true},
		{"brunch", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ParseMealType(c.in)
		if ok != c.ok {
			t.Errorf("ParseMealType(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseMealType(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSlotKey(t *testing.T) {
	d := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	got := SlotKey(d, MealLunch)
	want := "2026-03-14_lunch"
	if got != want {
		t.Errorf("SlotKey = %q, want %q", got, want)
	}
	// Time-of-day must not leak into the key.
	noon := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	if SlotKey(noon, MealLunch) != want {
		t.Errorf("SlotKey with time component = %q, want %q", SlotKey(noon, MealLunch), want)
	}
}
