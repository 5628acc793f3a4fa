package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp CSV: %v", err)
	}
	return path
}

func TestLoadStock(t *testing.T) {
	path := writeTempCSV(t, "stock.csv",
		"item_code,warehouse,actual_qty,reserved_qty\n"+
			"WIDGET-100,Stores - WH,10.5,2\n"+
			"WIDGET-100,Stores - EAST,4,\n")

	positions, err := NewLoader().LoadStock(path)
	if err != nil {
		t.Fatalf("LoadStock failed: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(positions))
	}
	if !positions[0].ActualQty.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("ActualQty = %s, want 10.5", positions[0].ActualQty)
	}
	if !positions[1].ReservedQty.Equal(decimal.Zero) {
		t.Errorf("Empty reserved_qty should parse as zero, got %s", positions[1].ReservedQty)
	}
}

func TestLoadStock_HeaderMismatch(t *testing.T) {
	path := writeTempCSV(t, "stock.csv",
		"item,warehouse,qty,reserved\nWIDGET-100,Stores - WH,10,0\n")

	_, err := NewLoader().LoadStock(path)
	if err == nil || !strings.Contains(err.Error(), "header mismatch") {
		t.Errorf("Expected header mismatch error, got %v", err)
	}
}

func TestLoadStock_BadRow(t *testing.T) {
	path := writeTempCSV(t, "stock.csv",
		"item_code,warehouse,actual_qty,reserved_qty\n"+
			"WIDGET-100,Stores - WH,ten,0\n")

	_, err := NewLoader().LoadStock(path)
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Errorf("Expected row 2 parse error, got %v", err)
	}
}

func TestLoadSupply(t *testing.T) {
	path := writeTempCSV(t, "supply.csv",
		"item_code,warehouse,qty,expected_date,reference\n"+
			"WIDGET-100,Stores - WH,50,2026-03-09,PO-00012\n")

	supplies, err := NewLoader().LoadSupply(path)
	if err != nil {
		t.Fatalf("LoadSupply failed: %v", err)
	}
	if len(supplies) != 1 {
		t.Fatalf("Expected 1 supply entry, got %d", len(supplies))
	}
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !supplies[0].ExpectedDate.Equal(want) {
		t.Errorf("ExpectedDate = %v, want %v", supplies[0].ExpectedDate, want)
	}
	if supplies[0].Reference != "PO-00012" {
		t.Errorf("Reference = %q, want PO-00012", supplies[0].Reference)
	}
}

func TestLoadSupply_BadDate(t *testing.T) {
	path := writeTempCSV(t, "supply.csv",
		"item_code,warehouse,qty,expected_date,reference\n"+
			"WIDGET-100,Stores - WH,50,03/09/2026,PO-00012\n")

	_, err := NewLoader().LoadSupply(path)
	if err == nil || !strings.Contains(err.Error(), "expected_date") {
		t.Errorf("Expected date format error, got %v", err)
	}
}

func TestLoadStock_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadStock(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}
