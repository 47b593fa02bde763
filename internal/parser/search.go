package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// ParseSearchPage splits one search results page into raw listings. Rows
// without a usable title or link are dropped silently; they are almost always
// ads or other non-product decorations eBay mixes into the result list.
// A price shown as a range means the listing covers several purchasable
// configurations and is marked multi-variant for a detail-page fetch.
func (p *EbayParser) ParseSearchPage(html string) ([]models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	container := doc.Find("ul[class*='srp-results']").First()
	if container.Length() == 0 {
		return nil, nil
	}

	var listings []models.RawListing
	container.Find("li[class*='s-item']").Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("div[class*='s-item__title']").First().Text())
		if title == "" {
			// Some result layouts put the title inside an h3 instead.
			title = strings.TrimSpace(item.Find("h3[class*='s-item__title']").First().Text())
		}

		priceText := strings.TrimSpace(item.Find("span[class*='s-item__price']").First().Text())
		url, _ := item.Find("a[class*='s-item__link']").First().Attr("href")

		if title == "" || url == "" {
			return
		}

		listings = append(listings, models.RawListing{
			Title:          title,
			URL:            url,
			PriceText:      priceText,
			IsMultiVariant: strings.Contains(strings.ToLower(priceText), "to"),
		})
	})

	return listings, nil
}
