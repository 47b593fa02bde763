package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPageHTML = `<!DOCTYPE html>
<html>
<body>
	<ul class="srp-results srp-list clearfix">
		<li class="s-item s-item__pl-on-bottom">
			<a class="s-item__link" href="https://www.ebay.com/itm/111"></a>
			<div class="s-item__title"><span>Samsung 870 EVO 2TB SATA SSD</span></div>
			<span class="s-item__price">$149.99</span>
		</li>
		<li class="s-item s-item__pl-on-bottom">
			<a class="s-item__link" href="https://www.ebay.com/itm/222"></a>
			<h3 class="s-item__title">Crucial MX500 SSD</h3>
			<span class="s-item__price">$39.99 to $189.99</span>
		</li>
		<li class="s-item s-item__pl-on-bottom">
			<div class="s-item__title">Shop on eBay</div>
			<span class="s-item__price">$20.00</span>
		</li>
		<li class="s-item s-item__pl-on-bottom">
			<a class="s-item__link" href="https://www.ebay.com/itm/333"></a>
			<span class="s-item__price">$10.00</span>
		</li>
	</ul>
</body>
</html>`

func TestParseSearchPage(t *testing.T) {
	parser := NewEbayParser()

	listings, err := parser.ParseSearchPage(searchPageHTML)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Samsung 870 EVO 2TB SATA SSD", listings[0].Title)
	assert.Equal(t, "https://www.ebay.com/itm/111", listings[0].URL)
	assert.Equal(t, "$149.99", listings[0].PriceText)
	assert.False(t, listings[0].IsMultiVariant)

	// Title in the alternate h3 container, range price marks it multi-variant.
	assert.Equal(t, "Crucial MX500 SSD", listings[1].Title)
	assert.Equal(t, "https://www.ebay.com/itm/222", listings[1].URL)
	assert.True(t, listings[1].IsMultiVariant)
}

func TestParseSearchPageNoResultsContainer(t *testing.T) {
	parser := NewEbayParser()

	listings, err := parser.ParseSearchPage(`<html><body><div>captcha page</div></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestParseSearchPageEmptyContainer(t *testing.T) {
	parser := NewEbayParser()

	listings, err := parser.ParseSearchPage(`<html><body><ul class="srp-results"></ul></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, listings)
}
