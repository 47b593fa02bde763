package scraper

import (
	"sort"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// Rank returns the listings whose price per TB falls inside the bounds,
// cheapest first. The sort is stable so same-priced listings keep their
// accumulation order, and the input slice is left untouched.
func Rank(listings []models.AnalyzedListing, bounds models.Bounds) []models.AnalyzedListing {
	ranked := make([]models.AnalyzedListing, 0, len(listings))
	for _, l := range listings {
		if bounds.Contains(l.PricePerTB) {
			ranked = append(ranked, l)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PricePerTB < ranked[j].PricePerTB
	})
	return ranked
}

// CountValid counts the listings inside the bounds without sorting.
func CountValid(listings []models.AnalyzedListing, bounds models.Bounds) int {
	count := 0
	for _, l := range listings {
		if bounds.Contains(l.PricePerTB) {
			count++
		}
	}
	return count
}
