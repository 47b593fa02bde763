package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

func analyzed(title string, pricePerTB float64) models.AnalyzedListing {
	return models.AnalyzedListing{Title: title, PriceUSD: pricePerTB, CapacityTB: 1, PricePerTB: pricePerTB}
}

func TestRankFiltersAndSorts(t *testing.T) {
	listings := []models.AnalyzedListing{
		analyzed("expensive", 150),
		analyzed("mid", 60),
		analyzed("cheap", 30),
		analyzed("too cheap", 10),
		analyzed("edge low", 20),
		analyzed("edge high", 100),
	}
	bounds := models.Bounds{MinPricePerTB: 20, MaxPricePerTB: 100, DesiredCount: 1}

	ranked := Rank(listings, bounds)

	require.Len(t, ranked, 4)
	assert.Equal(t, "edge low", ranked[0].Title)
	assert.Equal(t, "cheap", ranked[1].Title)
	assert.Equal(t, "mid", ranked[2].Title)
	assert.Equal(t, "edge high", ranked[3].Title)

	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].PricePerTB, ranked[i].PricePerTB)
	}

	// Input order untouched.
	assert.Equal(t, "expensive", listings[0].Title)
}

func TestRankStableOnTies(t *testing.T) {
	listings := []models.AnalyzedListing{
		analyzed("first", 50),
		analyzed("second", 50),
		analyzed("third", 50),
	}
	bounds := models.Bounds{MinPricePerTB: 20, MaxPricePerTB: 100, DesiredCount: 1}

	ranked := Rank(listings, bounds)

	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].Title)
	assert.Equal(t, "second", ranked[1].Title)
	assert.Equal(t, "third", ranked[2].Title)
}

func TestCountValid(t *testing.T) {
	listings := []models.AnalyzedListing{
		analyzed("in", 50),
		analyzed("out", 150),
	}
	bounds := models.Bounds{MinPricePerTB: 20, MaxPricePerTB: 100, DesiredCount: 1}

	assert.Equal(t, 1, CountValid(listings, bounds))
	assert.Equal(t, 0, CountValid(nil, bounds))
}

func TestSearchURL(t *testing.T) {
	assert.Equal(t,
		"https://www.ebay.com/sch/i.html?_nkw=nvme+ssd&_sop=15&_pgn=1",
		SearchURL("nvme ssd", 1))
	assert.Equal(t,
		"https://www.ebay.com/sch/i.html?_nkw=nvme+ssd&_sop=15&_pgn=7",
		SearchURL("  nvme   ssd  ", 7))
}
