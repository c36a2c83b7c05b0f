package cli

import (
	"strconv"

	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/requestid"
	"github.com/pankajredekar/stockroom/internal/service"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	stockAction   string
	stockQuantity int
)

func quantityFlag(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("quantity") {
		return nil
	}
	q := stockQuantity
	return &q
}

func printResult(res service.Result, err error) {
	switch res.Outcome {
	case inventory.OutcomeSuccess:
		utils.PrintSuccess("%s (%d → %d)", res.Message, res.PreviousStock, res.NewStock)
	case inventory.OutcomeAwaitingAction:
		p := res.Product
		utils.PrintInfo("%s [%s] %s, %s €, %d in stock", p.Name, p.Barcode, p.Category, p.Price.StringFixed(2), p.Stock)
		utils.PrintInfo("Pass --action increase|decrease|set to change the stock")
	case inventory.OutcomeStorageError:
		exit("%s: %v", res.Message, err)
	default:
		exit("%s", res.Message)
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan <barcode>",
	Short: "Look up a barcode and optionally adjust its stock",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := requestid.WithID(cmd.Context(), requestid.New())
		a := newApp(ctx)
		defer a.Close()

		res, err := a.stock.Scan(ctx, service.ScanRequest{
			Code:     args[0],
			Action:   stockAction,
			Quantity: quantityFlag(cmd),
		})
		printResult(res, err)
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <product-id>",
	Short: "Adjust the stock of a product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			exit("Invalid product id: %s", args[0])
		}
		ctx := requestid.WithID(cmd.Context(), requestid.New())
		a := newApp(ctx)
		defer a.Close()

		res, err := a.stock.Adjust(ctx, service.AdjustRequest{
			ProductID: uint(id),
			Action:    stockAction,
			Quantity:  quantityFlag(cmd),
		})
		printResult(res, err)
	},
}

func init() {
	for _, c := range []*cobra.Command{scanCmd, adjustCmd} {
		c.Flags().StringVarP(&stockAction, "action", "a", "", "increase, decrease or set")
		c.Flags().IntVarP(&stockQuantity, "quantity", "n", 1, "quantity to apply")
		rootCmd.AddCommand(c)
	}
	adjustCmd.MarkFlagRequired("action")
}
