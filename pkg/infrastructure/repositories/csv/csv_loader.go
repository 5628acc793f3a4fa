package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// Loader handles loading supply data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadStock loads stock positions from a CSV file
func (l *Loader) LoadStock(filename string) ([]*entities.StockPosition, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open stock file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read stock CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("stock CSV must have header and at least one data row")
	}

	// Validate header
	expectedHeader := []string{"item_code", "warehouse", "actual_qty", "reserved_qty"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("stock CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var positions []*entities.StockPosition
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("stock CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		pos, err := parseStockPosition(record)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}

		positions = append(positions, pos)
	}

	return positions, nil
}

// LoadSupply loads incoming supply from a CSV file
func (l *Loader) LoadSupply(filename string) ([]*entities.IncomingSupply, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open supply file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read supply CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("supply CSV must have header and at least one data row")
	}

	// Validate header
	expectedHeader := []string{"item_code", "warehouse", "qty", "expected_date", "reference"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("supply CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var supplies []*entities.IncomingSupply
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("supply CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		sup, err := parseIncomingSupply(record)
		if err != nil {
			return nil, fmt.Errorf("supply CSV row %d: %w", i+2, err)
		}

		supplies = append(supplies, sup)
	}

	return supplies, nil
}

// validateHeader checks if the actual header matches the expected header
func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseStockPosition(record []string) (*entities.StockPosition, error) {
	actualQty, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid actual_qty: %s", record[2])
	}

	reservedQty := decimal.Zero
	if v := strings.TrimSpace(record[3]); v != "" {
		reservedQty, err = decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid reserved_qty: %s", record[3])
		}
	}

	return entities.NewStockPosition(
		entities.ItemCode(strings.TrimSpace(record[0])),
		entities.Warehouse(strings.TrimSpace(record[1])),
		actualQty,
		reservedQty,
	)
}

func parseIncomingSupply(record []string) (*entities.IncomingSupply, error) {
	qty, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid qty: %s", record[2])
	}

	expectedDate, err := time.Parse("2006-01-02", strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid expected_date: %s (expected YYYY-MM-DD)", record[3])
	}

	return entities.NewIncomingSupply(
		entities.ItemCode(strings.TrimSpace(record[0])),
		entities.Warehouse(strings.TrimSpace(record[1])),
		qty,
		expectedDate,
		strings.TrimSpace(record[4]),
	)
}
