package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
	"github.com/pip3-kill-me/ebay-scraper/internal/scraper"
)

func TestMarkdownLog(t *testing.T) {
	var buf strings.Builder
	bounds := models.Bounds{MinPricePerTB: 20, MaxPricePerTB: 100, DesiredCount: 10}

	log, err := NewMarkdownLog(&buf, "nvme ssd", bounds)
	require.NoError(t, err)

	log.PageStarted(1)
	log.Record(scraper.StatusEvent{
		Kind:       scraper.StatusSuccess,
		Category:   scraper.CategorySingle,
		Title:      "2TB SSD",
		PricePerTB: 75,
		HasPrice:   true,
	})
	log.Record(scraper.StatusEvent{
		Kind:     scraper.StatusSkipped,
		Category: scraper.CategoryVariation,
		Title:    "Mystery bundle",
		Detail:   "Could not extract",
	})
	log.Record(scraper.StatusEvent{
		Kind:     scraper.StatusInfo,
		Category: scraper.CategorySystem,
		Detail:   "No listings found on this page.",
	})

	out := buf.String()
	assert.Contains(t, out, "# eBay SSD Analysis Log for 'nvme ssd'")
	assert.Contains(t, out, "- Price/TB Range: $20.00 to $100.00")
	assert.Contains(t, out, "- Desired Results: 10")
	assert.Contains(t, out, "| Status | Type | Title | Price/TB |")
	assert.Contains(t, out, "*Parsing Page 1*")
	assert.Contains(t, out, "| SUCCESS | Single | `2TB SSD` | **$75.00** |")
	assert.Contains(t, out, "| SKIPPED | Variation | `Mystery bundle` | Could not extract |")
	assert.Contains(t, out, "| INFO | System | No listings found on this page. |")
}

func TestMarkdownLogTruncatesLongSkippedTitles(t *testing.T) {
	var buf strings.Builder
	log, err := NewMarkdownLog(&buf, "ssd", models.Bounds{MinPricePerTB: 1, MaxPricePerTB: 2, DesiredCount: 1})
	require.NoError(t, err)

	long := strings.Repeat("x", 120)
	log.Record(scraper.StatusEvent{Kind: scraper.StatusSkipped, Category: scraper.CategorySingle, Title: long})

	assert.Contains(t, buf.String(), strings.Repeat("x", 80)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 81))
}

func TestWriteTable(t *testing.T) {
	var buf strings.Builder
	WriteTable(&buf, []models.AnalyzedListing{
		{Title: "2TB SSD", PriceUSD: 150, CapacityTB: 2, PricePerTB: 75, URL: "https://www.ebay.com/itm/1"},
	})

	out := buf.String()
	assert.Contains(t, out, "2TB SSD")
	assert.Contains(t, out, "$75.00")
	assert.Contains(t, out, "2.00 TB")

	buf.Reset()
	WriteTable(&buf, nil)
	assert.Contains(t, buf.String(), "No listings matched")
}
