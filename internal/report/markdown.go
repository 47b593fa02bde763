package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
	"github.com/pip3-kill-me/ebay-scraper/internal/scraper"
)

// MarkdownLog writes the detailed analysis log as a markdown table, one row
// per processed or skipped record. It implements scraper.StatusSink.
type MarkdownLog struct {
	w  io.Writer
	mu sync.Mutex
}

// NewMarkdownLog writes the log header and search criteria before returning.
func NewMarkdownLog(w io.Writer, term string, bounds models.Bounds) (*MarkdownLog, error) {
	header := fmt.Sprintf("# eBay SSD Analysis Log for '%s'\n\n", term) +
		"**Search Criteria:**\n" +
		fmt.Sprintf("- Price/TB Range: $%.2f to $%.2f\n", bounds.MinPricePerTB, bounds.MaxPricePerTB) +
		fmt.Sprintf("- Desired Results: %d\n\n", bounds.DesiredCount) +
		"| Status | Type | Title | Price/TB |\n" +
		"|:---|:---|:---|:---|\n"

	if _, err := io.WriteString(w, header); err != nil {
		return nil, fmt.Errorf("failed to write log header: %w", err)
	}
	return &MarkdownLog{w: w}, nil
}

func (l *MarkdownLog) PageStarted(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "\n*Parsing Page %d*\n\n", page)
}

func (l *MarkdownLog) Record(ev scraper.StatusEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Kind {
	case scraper.StatusSuccess:
		fmt.Fprintf(l.w, "| SUCCESS | %s | `%s` | **$%.2f** |\n", categoryLabel(ev.Category), ev.Title, ev.PricePerTB)
	case scraper.StatusSkipped:
		fmt.Fprintf(l.w, "| SKIPPED | %s | `%s` | %s |\n", categoryLabel(ev.Category), truncate(ev.Title, 80), ev.Detail)
	case scraper.StatusInfo:
		fmt.Fprintf(l.w, "| INFO | %s | %s |\n", categoryLabel(ev.Category), ev.Detail)
	}
}

func categoryLabel(c scraper.StatusCategory) string {
	switch c {
	case scraper.CategorySingle:
		return "Single"
	case scraper.CategoryVariation:
		return "Variation"
	case scraper.CategorySystem:
		return "System"
	default:
		return string(c)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
