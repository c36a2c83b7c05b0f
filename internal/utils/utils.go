package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pankajredekar/stockroom/internal/model"
)

// Color output helpers
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

// Output is where the Print helpers write. Tests swap it.
var Output io.Writer = os.Stdout

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorGreen+"✓ "+msg+ColorReset+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorRed+"✗ "+msg+ColorReset+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorCyan+"ℹ "+msg+ColorReset+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorYellow+"⚠ "+msg+ColorReset+"\n", args...)
}

// PrintProducts prints products as an aligned table. Stock at or below
// lowThreshold is highlighted.
func PrintProducts(products []model.Product, lowThreshold int) {
	tw := tabwriter.NewWriter(Output, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBARCODE\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		stock := strconv.Itoa(p.Stock)
		switch p.StockBand(lowThreshold) {
		case model.BandOut:
			stock = ColorRed + stock + ColorReset
		case model.BandLow:
			stock = ColorYellow + stock + ColorReset
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Barcode, p.Name, p.Category, p.Price.StringFixed(2), stock)
	}
	tw.Flush()
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
