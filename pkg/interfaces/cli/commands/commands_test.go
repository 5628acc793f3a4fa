package commands

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseItemArgs(t *testing.T) {
	lines, err := parseItemArgs([]string{"WIDGET-100:5", "GADGET-200:2.5"})
	if err != nil {
		t.Fatalf("parseItemArgs failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].ItemCode != "WIDGET-100" || !lines[0].Qty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("lines[0] = %+v", lines[0])
	}
	if !lines[1].Qty.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("lines[1].Qty = %s, want 2.5", lines[1].Qty)
	}
}

func TestParseItemArgs_Invalid(t *testing.T) {
	cases := []string{"WIDGET-100", ":5", "WIDGET-100:five"}
	for _, arg := range cases {
		if _, err := parseItemArgs([]string{arg}); err == nil {
			t.Errorf("Expected error for %q", arg)
		}
	}
}
