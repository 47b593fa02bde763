package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// EbayParser holds the compiled patterns shared by all extraction paths.
type EbayParser struct {
	capacityPattern       *regexp.Regexp
	pricePattern          *regexp.Regexp
	variationModelPattern *regexp.Regexp
}

func NewEbayParser() *EbayParser {
	return &EbayParser{
		capacityPattern: regexp.MustCompile(`(\d+\.?\d*)\s*(tb|gb)`),
		pricePattern:    regexp.MustCompile(`\d{1,3}(?:,?\d{3})*(?:\.\d{2})?`),
		// The variation model is assigned to msku.JsonModel inside a script block.
		variationModelPattern: regexp.MustCompile(`(?s)msku\.JsonModel\s*=\s*(\{.*?\});`),
	}
}

var titleNormalizer = strings.NewReplacer("/", " ", "-", " ", "_", " ")

// ExtractCapacityTB derives the most representative capacity from a product
// title, in terabytes. Titles routinely carry several numbers (model codes,
// interface speeds, cache sizes); TB-tagged values always win over GB-tagged
// ones, and within a unit the largest value wins.
func (p *EbayParser) ExtractCapacityTB(title string) (float64, bool) {
	normalized := strings.ToLower(titleNormalizer.Replace(title))

	matches := p.capacityPattern.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return 0, false
	}

	var bestTB, bestGB float64
	var haveTB, haveGB bool
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "tb":
			if !haveTB || value > bestTB {
				bestTB = value
				haveTB = true
			}
		case "gb":
			converted := value / 1000.0
			if !haveGB || converted > bestGB {
				bestGB = converted
				haveGB = true
			}
		}
	}

	if haveTB {
		return bestTB, true
	}
	if haveGB {
		return bestGB, true
	}
	return 0, false
}

// ExtractPrice pulls the first well-formed monetary amount out of a formatted
// currency string, tolerating thousands separators.
func (p *EbayParser) ExtractPrice(text string) (float64, bool) {
	match := p.pricePattern.FindString(text)
	if match == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
