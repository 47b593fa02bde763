package report

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

const maxChartBars = 20

// WriteDealChart renders the ranked results to a PDF: a horizontal bar chart
// of the best deals followed by the full result table. Listings are expected
// already filtered and sorted cheapest-first.
func WriteDealChart(listings []models.AnalyzedListing, bounds models.Bounds, outPath string) error {
	if len(listings) == 0 {
		return fmt.Errorf("no listings to chart")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "SSD Deals by Price per TB", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6,
		fmt.Sprintf("Price/TB range: $%.2f to $%.2f, %d matching listings", bounds.MinPricePerTB, bounds.MaxPricePerTB, len(listings)),
		"", 1, "L", false, 0, "")
	pdf.Ln(4)

	bars := listings
	if len(bars) > maxChartBars {
		bars = bars[:maxChartBars]
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	labelWidth := 80.0
	chartWidth := pageWidth - left - right - labelWidth - 18

	maxValue := bars[0].PricePerTB
	for _, l := range bars {
		if l.PricePerTB > maxValue {
			maxValue = l.PricePerTB
		}
	}

	pdf.SetFillColor(96, 186, 186)
	for _, l := range bars {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(labelWidth, 6, truncate(l.Title, 48), "", 0, "L", false, 0, "")

		barLen := chartWidth * (l.PricePerTB / maxValue)
		x, y := pdf.GetXY()
		pdf.Rect(x, y+1, barLen, 4, "F")
		pdf.SetXY(x+barLen+2, y)
		pdf.CellFormat(16, 6, fmt.Sprintf("$%.2f", l.PricePerTB), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "All matching listings", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(90, 6, "Title", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Capacity", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Price/TB", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range listings {
		pdf.CellFormat(90, 5, truncate(l.Title, 58), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("$%.2f", l.PriceUSD), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("%.2f TB", l.CapacityTB), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("$%.2f", l.PricePerTB), "", 1, "R", false, 0, "")
	}

	drawScatter(pdf, listings, bounds)

	return pdf.OutputFileAndClose(outPath)
}

// drawScatter adds a capacity-vs-price overview page, each point shaded by
// its price per TB across the accepted range (cheap = teal, dear = purple).
func drawScatter(pdf *gofpdf.Fpdf, listings []models.AnalyzedListing, bounds models.Bounds) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "SSD Price vs. Capacity Overview", "", 1, "L", false, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	left, top, right, _ := pdf.GetMargins()

	originX := left + 14
	originY := top + 130
	plotWidth := pageWidth - originX - right - 10
	plotHeight := 110.0

	maxCapacity, maxPrice := 0.0, 0.0
	for _, l := range listings {
		if l.CapacityTB > maxCapacity {
			maxCapacity = l.CapacityTB
		}
		if l.PriceUSD > maxPrice {
			maxPrice = l.PriceUSD
		}
	}
	if maxCapacity == 0 || maxPrice == 0 {
		return
	}

	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(originX, originY, originX+plotWidth, originY)
	pdf.Line(originX, originY, originX, originY-plotHeight)

	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(originX+plotWidth/2-12, originY+8, "Capacity (TB)")
	pdf.TransformBegin()
	pdf.TransformRotate(90, originX-8, originY-plotHeight/2)
	pdf.Text(originX-8, originY-plotHeight/2, "Price (USD)")
	pdf.TransformEnd()
	pdf.Text(originX+plotWidth-6, originY+4, fmt.Sprintf("%.1f", maxCapacity))
	pdf.Text(originX-12, originY-plotHeight+2, fmt.Sprintf("%.0f", maxPrice))

	span := bounds.MaxPricePerTB - bounds.MinPricePerTB
	for _, l := range listings {
		shade := 0.0
		if span > 0 {
			shade = (l.PricePerTB - bounds.MinPricePerTB) / span
		}
		if shade < 0 {
			shade = 0
		}
		if shade > 1 {
			shade = 1
		}
		pdf.SetFillColor(int(96+94*shade), int(186-120*shade), 186)

		x := originX + plotWidth*(l.CapacityTB/maxCapacity)
		y := originY - plotHeight*(l.PriceUSD/maxPrice)
		pdf.Circle(x, y, 1.6, "F")
	}

	pdf.SetFont("Helvetica", "", 7)
	pdf.Text(originX, originY+14,
		fmt.Sprintf("Shade: price per TB from $%.2f (teal) to $%.2f (purple)", bounds.MinPricePerTB, bounds.MaxPricePerTB))
}
