package scraper

import (
	"fmt"
	"strings"
)

const searchBaseURL = "https://www.ebay.com/sch/i.html"

// sortNewlyListed is eBay's _sop value for "newly listed" result ordering.
const sortNewlyListed = 15

// SearchURL builds the search results URL for a 1-based page number. Words in
// the search term are joined with '+' the way the site's own search box does.
func SearchURL(term string, page int) string {
	keywords := strings.Join(strings.Fields(term), "+")
	return fmt.Sprintf("%s?_nkw=%s&_sop=%d&_pgn=%d", searchBaseURL, keywords, sortNewlyListed, page)
}
