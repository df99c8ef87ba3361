package utils

import (
	"strings"
	"testing"
)

func TestNewTicketCode(t *testing.T) {
	code, err := NewTicketCode()
	if err != nil {
		t.Fatalf("NewTicketCode returned error: %v", err)
	}
	if len(code) != TicketCodeLen {
		t.Fatalf("code length = %d, want %d", len(code), TicketCodeLen)
	}
	for _, r := range code {
		if !strings.ContainsRune(ticketAlphabet, r) {
			t.Errorf("code %q contains %q outside the allowed alphabet", code, r)
		}
	}
}

func TestNewTicketCodeVaries(t *testing.T) {
	// With 36^8 possible codes, 100 draws colliding would indicate a
	// broken generator rather than bad luck.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewTicketCode()
		if err != nil {
			t.Fatalf("NewTicketCode returned error: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}
