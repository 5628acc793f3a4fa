package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/application/services"
	"github.com/sjoshi/otp/pkg/config"
	"github.com/sjoshi/otp/pkg/domain/entities"
	"github.com/sjoshi/otp/pkg/infrastructure/repositories/csv"
	"github.com/sjoshi/otp/pkg/infrastructure/repositories/memory"
	"github.com/sjoshi/otp/pkg/interfaces/cli/output"
)

// PromiseConfig holds configuration for the promise command
type PromiseConfig struct {
	ConfigFile string
	StockFile  string
	SupplyFile string
	Customer   string
	Items      []string
	Mode       string
	Format     string
}

// PromiseCommand computes a delivery promise from CSV supply data
type PromiseCommand struct {
	config PromiseConfig
}

// NewPromiseCommand creates a promise command with the given configuration
func NewPromiseCommand(cfg PromiseConfig) *PromiseCommand {
	return &PromiseCommand{config: cfg}
}

// Execute runs the promise command
func (c *PromiseCommand) Execute(ctx context.Context) error {
	if c.config.Customer == "" {
		return fmt.Errorf("customer is required")
	}
	if len(c.config.Items) == 0 {
		return fmt.Errorf("at least one --item is required (format ITEM-CODE:QTY)")
	}
	if c.config.StockFile == "" {
		return fmt.Errorf("stock CSV file is required")
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	rules, err := cfg.BusinessRules()
	if err != nil {
		return err
	}
	if c.config.Mode != "" {
		mode, err := entities.ParseFulfillmentMode(c.config.Mode)
		if err != nil {
			return err
		}
		rules.Mode = mode
	}

	lines, err := parseItemArgs(c.config.Items)
	if err != nil {
		return err
	}

	provider, err := loadCSVProvider(c.config.StockFile, c.config.SupplyFile)
	if err != nil {
		return err
	}

	svc := services.NewPromiseService(provider, nil)
	plan, err := svc.ComputePromise(ctx, &entities.PromiseRequest{
		Customer: c.config.Customer,
		Items:    lines,
		Rules:    rules,
	})
	if err != nil {
		return err
	}

	return output.Render(os.Stdout, plan, c.config.Format)
}

// parseItemArgs parses ITEM-CODE:QTY pairs
func parseItemArgs(args []string) ([]entities.LineItemRequest, error) {
	var lines []entities.LineItemRequest
	for _, arg := range args {
		code, qtyStr, found := strings.Cut(arg, ":")
		if !found || code == "" {
			return nil, fmt.Errorf("invalid item %q, expected ITEM-CODE:QTY", arg)
		}
		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", arg, err)
		}
		lines = append(lines, entities.LineItemRequest{
			ItemCode: entities.ItemCode(code),
			Qty:      qty,
		})
	}
	return lines, nil
}

// loadCSVProvider loads CSV files into an in-memory supply provider.
// The supply file is optional.
func loadCSVProvider(stockFile, supplyFile string) (*memory.SupplyRepository, error) {
	loader := csv.NewLoader()
	repo := memory.NewSupplyRepository()

	stock, err := loader.LoadStock(stockFile)
	if err != nil {
		return nil, fmt.Errorf("error loading stock: %w", err)
	}
	repo.LoadStock(stock)

	if supplyFile != "" {
		supply, err := loader.LoadSupply(supplyFile)
		if err != nil {
			return nil, fmt.Errorf("error loading supply: %w", err)
		}
		repo.LoadSupply(supply)
	}
	return repo, nil
}
