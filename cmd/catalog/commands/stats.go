package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mytheresa/catalog-service/models"
	"github.com/spf13/cobra"
)

var (
	// Stats flags
	includeInactive bool
	jsonOutput      bool
)

// statsCmd prints row counts per catalog entity
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog row counts",
	Long: `Show how many categories, products and product lines the catalog holds.

Examples:
  catalog stats                         # Active rows only
  catalog stats --all                   # Include inactive rows
  catalog stats --json                  # Output in JSON format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&includeInactive, "all", false, "Count inactive rows too")
	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

type catalogStats struct {
	Categories   int64 `json:"categories"`
	Products     int64 `json:"products"`
	ProductLines int64 `json:"product_lines"`
}

func runStats(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	activeOnly := !includeInactive
	var stats catalogStats
	if stats.Categories, err = models.NewCategoriesRepository(db).CountCategories(ctx, activeOnly); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if stats.Products, err = models.NewProductsRepository(db).CountProducts(ctx, activeOnly); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if stats.ProductLines, err = models.NewProductLinesRepository(db).CountProductLines(ctx, activeOnly); err != nil {
		return fmt.Errorf("failed to count product lines: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tCOUNT")
	fmt.Fprintf(w, "categories\t%d\n", stats.Categories)
	fmt.Fprintf(w, "products\t%d\n", stats.Products)
	fmt.Fprintf(w, "product lines\t%d\n", stats.ProductLines)
	return w.Flush()
}
