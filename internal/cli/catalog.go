package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/export"
	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert default categories and sample products",
	Long:  "Inserts missing default categories, and sample products when the catalogue is empty",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		res, err := a.seeder.Seed(ctx)
		if err != nil {
			exit("Failed to seed: %v", err)
		}
		utils.PrintSuccess("Added %d categories and %d products", res.Categories, res.Products)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stock statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		s, err := a.stats.Summary(ctx)
		if err != nil {
			exit("Failed to compute statistics: %v", err)
		}
		out := utils.Output
		fmt.Fprintf(out, "Products:      %d\n", s.TotalProducts)
		fmt.Fprintf(out, "Out of stock:  %d\n", s.OutOfStock)
		fmt.Fprintf(out, "Low stock:     %d (≤ %d)\n", s.LowStock, s.LowThreshold)
		fmt.Fprintf(out, "Stock value:   %s €\n", s.StockValue.StringFixed(2))
		if len(s.TopCategories) > 0 {
			fmt.Fprintln(out, "\nTop categories:")
			for _, c := range s.TopCategories {
				fmt.Fprintf(out, "  %-12s %3d products, %d units\n", c.Category, c.Count, c.StockTotal)
			}
		}
	},
}

var (
	exportDialect string
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:       "export csv|sql",
	Short:     "Export the catalogue",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"csv", "sql"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		now := time.Now()
		var buf bytes.Buffer
		var name string
		switch args[0] {
		case "csv":
			products, err := a.products.List(ctx, repository.ProductFilter{Sort: "name"})
			if err != nil {
				exit("Failed to list products: %v", err)
			}
			if err := export.WriteCSV(&buf, products); err != nil {
				exit("Export failed: %v", err)
			}
			name = fmt.Sprintf("products_%s.csv", now.Format("20060102_150405"))
		case "sql":
			dialect, err := database.DialectFor(exportDialect)
			if err != nil {
				exit("%v", err)
			}
			categories, err := a.categories.List(ctx)
			if err != nil {
				exit("Failed to list categories: %v", err)
			}
			products, err := a.products.List(ctx, repository.ProductFilter{Sort: "id"})
			if err != nil {
				exit("Failed to list products: %v", err)
			}
			if err := export.WriteSQLDump(&buf, dialect, categories, products, now); err != nil {
				exit("Export failed: %v", err)
			}
			name = fmt.Sprintf("stockroom_%s.sql", dialect.Name())
		}

		if exportOutput == "-" {
			io.Copy(os.Stdout, &buf)
			return
		}
		if exportOutput != "" {
			name = exportOutput
		}
		if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
			exit("Failed to write %s: %v", name, err)
		}
		utils.PrintSuccess("Wrote %s", name)
	},
}

var (
	categoryEmoji       string
	categoryDescription string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		categories, err := a.categories.List(ctx)
		if err != nil {
			exit("Failed to list categories: %v", err)
		}
		for _, c := range categories {
			fmt.Fprintf(utils.Output, "%4d  %s %-12s %s\n", c.ID, c.Emoji, c.Name, c.Description)
		}
	},
}

var addCategoryCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		c, err := a.categories.Create(ctx, args[0], categoryEmoji, categoryDescription)
		if err != nil {
			exit("Failed to create category: %v", err)
		}
		utils.PrintSuccess("Created %s %s (id %d)", c.Emoji, c.Name, c.ID)
	},
}

var deleteCategoryCmd = &cobra.Command{
	Use:   "delete <category-id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			exit("Invalid category id: %s", args[0])
		}
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		if err := a.categories.Delete(ctx, uint(id)); err != nil {
			exit("Failed to delete category: %v", err)
		}
		utils.PrintSuccess("Deleted category %d", id)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDialect, "dialect", database.Postgres, "target dialect of the SQL dump: postgres or sqlite")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout")

	addCategoryCmd.Flags().StringVar(&categoryEmoji, "emoji", "", "emoji shown next to the name")
	addCategoryCmd.Flags().StringVar(&categoryDescription, "description", "", "description")
	categoriesCmd.AddCommand(addCategoryCmd, deleteCategoryCmd)

	rootCmd.AddCommand(seedCmd, statsCmd, exportCmd, categoriesCmd)
}
