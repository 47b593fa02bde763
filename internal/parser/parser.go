package parser

import (
	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// Parser extracts structured listing data from eBay markup and free text.
type Parser interface {
	ParseSearchPage(html string) ([]models.RawListing, error)
	ParseVariations(html string, baseTitle string) []models.AnalyzedListing
	ExtractCapacityTB(title string) (float64, bool)
	ExtractPrice(text string) (float64, bool)
}
