package repository

import "testing"

func TestGrandTotal(t *testing.T) {
	rows := []DailyRevenue{
		{Date: "2026-03-16", TotalCents: 4500},
		{Date: "2026-03-15", TotalCents: 12000},
		{Date: "2026-03-14", TotalCents: 0},
	}
	if got := GrandTotal(rows); got != 16500 {
		t.Errorf("GrandTotal = %d, want 16500", got)
	}
}

func TestGrandTotalEmpty(t *testing.T) {
	if got := GrandTotal(nil); got != 0 {
		t.Errorf("GrandTotal(nil) = %d, want 0", got)
	}
	if got := GrandTotal([]DailyRevenue{}); got != 0 {
		t.Errorf("GrandTotal(empty) = %d, want 0", got)
	}
}
