package cli

import (
	"os"
	"strconv"

	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/pankajredekar/stockroom/internal/service"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	listFilter   repository.ProductFilter
	listPriceMin string
	listPriceMax string

	newProduct service.ProductInput
	newPrice   string

	labelOutput string
)

func parsePrice(flag, raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		exit("Invalid --%s: %s", flag, raw)
	}
	return &d
}

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"ls"},
	Short:   "List products",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		listFilter.PriceMin = parsePrice("price-min", listPriceMin)
		listFilter.PriceMax = parsePrice("price-max", listPriceMax)
		products, err := a.products.List(ctx, listFilter)
		if err != nil {
			exit("Failed to list products: %v", err)
		}
		if len(products) == 0 {
			utils.PrintWarning("No products match")
			return
		}
		utils.PrintProducts(products, a.cfg.Stock.LowThreshold)
		utils.PrintInfo("%d product(s)", len(products))
	},
}

var addProductCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		in := newProduct
		in.Name = args[0]
		if p := parsePrice("price", newPrice); p != nil {
			in.Price = *p
		}
		p, err := a.products.Create(ctx, in)
		if err != nil {
			exit("Failed to create product: %v", err)
		}
		utils.PrintSuccess("Created %s (id %d, barcode %s)", p.Name, p.ID, p.Barcode)
	},
}

var deleteProductCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			exit("Invalid product id: %s", args[0])
		}
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		if err := a.products.Delete(ctx, uint(id)); err != nil {
			exit("Failed to delete product: %v", err)
		}
		utils.PrintSuccess("Deleted product %d", id)
	},
}

var labelCmd = &cobra.Command{
	Use:   "label <product-id>",
	Short: "Write the SVG barcode label of a product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			exit("Invalid product id: %s", args[0])
		}
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		svg, err := a.products.Label(ctx, uint(id))
		if err != nil {
			exit("Failed to render label: %v", err)
		}
		path := labelOutput
		if path == "" {
			path = "label_" + args[0] + ".svg"
		}
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			exit("Failed to write %s: %v", path, err)
		}
		utils.PrintSuccess("Wrote %s", path)
	},
}

var (
	sheetCategory string
	sheetOutput   string
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Write a printable sheet with the barcode labels of many products",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		svg, n, err := a.products.LabelSheet(ctx, sheetCategory)
		if err != nil {
			exit("Failed to render labels: %v", err)
		}
		path := sheetOutput
		if path == "" {
			path = "labels.svg"
		}
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			exit("Failed to write %s: %v", path, err)
		}
		utils.PrintSuccess("Wrote %d label(s) to %s", n, path)
	},
}

var verifyFix bool

var verifyBarcodesCmd = &cobra.Command{
	Use:   "verify-barcodes",
	Short: "Find empty and duplicate barcodes",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		report, err := a.products.VerifyBarcodes(ctx, verifyFix)
		if err != nil {
			exit("Barcode check failed: %v", err)
		}
		for _, p := range report.Empty {
			utils.PrintWarning("Product %d (%s) has no barcode", p.ID, p.Name)
		}
		for _, d := range report.Duplicates {
			utils.PrintWarning("Barcode %s is used by %d products", d.Barcode, d.Count)
		}
		for _, f := range report.Fixed {
			utils.PrintSuccess("Assigned %s to %s", f.Barcode, f.Name)
		}
		if report.OK() {
			utils.PrintSuccess("All barcodes are set and unique")
			return
		}
		if len(report.Empty) > len(report.Fixed) {
			utils.PrintInfo("Run with --fix to generate the missing barcodes")
		}
		os.Exit(1)
	},
}

func init() {
	f := productsCmd.Flags()
	f.StringVarP(&listFilter.Query, "query", "q", "", "match name or barcode")
	f.StringVar(&listFilter.Category, "category", "", "category name")
	f.StringVar(&listFilter.Stock, "stock", "", "stock band: out, low or ok")
	f.StringVar(&listPriceMin, "price-min", "", "minimum price")
	f.StringVar(&listPriceMax, "price-max", "", "maximum price")
	f.StringVar(&listFilter.Sort, "sort", "name", "name, price, stock, category, date or id")
	f.StringVar(&listFilter.Order, "order", "asc", "asc or desc")
	f.IntVar(&listFilter.Limit, "limit", 0, "maximum number of rows")

	af := addProductCmd.Flags()
	af.StringVar(&newProduct.Barcode, "barcode", "", "barcode, generated when omitted")
	af.StringVar(&newPrice, "price", "0", "unit price")
	af.IntVar(&newProduct.Stock, "stock", 0, "initial stock")
	af.StringVar(&newProduct.Category, "category", "", "category name")

	labelCmd.Flags().StringVarP(&labelOutput, "output", "o", "", "output file")
	labelsCmd.Flags().StringVar(&sheetCategory, "category", "", "only products of this category")
	labelsCmd.Flags().StringVarP(&sheetOutput, "output", "o", "", "output file (default labels.svg)")
	verifyBarcodesCmd.Flags().BoolVar(&verifyFix, "fix", false, "assign a generated barcode to products without one")

	productsCmd.AddCommand(addProductCmd, deleteProductCmd, labelCmd, labelsCmd)
	rootCmd.AddCommand(productsCmd, verifyBarcodesCmd)
}
