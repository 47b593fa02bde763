package models

import (
	"fmt"
)

// RawListing is one row of a search results page before analysis. Multi-variant
// rows carry a price range in PriceText and need a detail-page fetch to resolve.
type RawListing struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	PriceText      string `json:"price_text"`
	IsMultiVariant bool   `json:"is_multi_variant"`
}

// AnalyzedListing is a fully resolved listing with its comparison metric.
// CapacityTB is always positive and PricePerTB is always PriceUSD / CapacityTB.
type AnalyzedListing struct {
	Title      string  `json:"title"`
	PriceUSD   float64 `json:"price_usd"`
	CapacityTB float64 `json:"capacity_tb"`
	PricePerTB float64 `json:"price_per_tb"`
	URL        string  `json:"url,omitempty"`
}

// NewAnalyzedListing computes the price-per-TB metric. It refuses to build a
// listing from a non-positive price or capacity; such records are dropped by
// callers rather than carried with a bogus metric.
func NewAnalyzedListing(title, url string, priceUSD, capacityTB float64) (AnalyzedListing, bool) {
	if priceUSD <= 0 || capacityTB <= 0 {
		return AnalyzedListing{}, false
	}
	return AnalyzedListing{
		Title:      title,
		PriceUSD:   priceUSD,
		CapacityTB: capacityTB,
		PricePerTB: priceUSD / capacityTB,
		URL:        url,
	}, true
}

// Bounds is the immutable per-run search criteria.
type Bounds struct {
	MinPricePerTB float64 `json:"min_price_per_tb"`
	MaxPricePerTB float64 `json:"max_price_per_tb"`
	DesiredCount  int     `json:"desired_count"`
}

func (b Bounds) Validate() error {
	if b.MinPricePerTB >= b.MaxPricePerTB {
		return fmt.Errorf("minimum price per TB (%.2f) must be less than maximum (%.2f)", b.MinPricePerTB, b.MaxPricePerTB)
	}
	if b.DesiredCount <= 0 {
		return fmt.Errorf("desired result count must be positive, got %d", b.DesiredCount)
	}
	return nil
}

// Contains reports whether a price-per-TB value falls inside the bounds, inclusive.
func (b Bounds) Contains(pricePerTB float64) bool {
	return pricePerTB >= b.MinPricePerTB && pricePerTB <= b.MaxPricePerTB
}
