package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// WriteTable prints the ranked results as an aligned console table.
func WriteTable(w io.Writer, listings []models.AnalyzedListing) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings matched the price-per-TB criteria.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tPRICE\tCAPACITY\tPRICE/TB\tURL")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t$%.2f\t%.2f TB\t$%.2f\t%s\n",
			truncate(l.Title, 60), l.PriceUSD, l.CapacityTB, l.PricePerTB, l.URL)
	}
	tw.Flush()
}
