package parser

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// variationModel mirrors the msku.JsonModel object embedded in a product
// page. Menu is kept raw so entries can be walked in payload order.
type variationModel struct {
	Menu json.RawMessage `json:"menu"`
}

type variationEntry struct {
	Price struct {
		Value float64 `json:"value"`
	} `json:"price"`
	PropVals json.RawMessage `json:"propVals"`
}

// ParseVariations resolves a multi-variant product page into one analyzed
// listing per purchasable variant. A missing or malformed variation payload
// yields an empty result, never an error; a single bad variant is skipped
// without discarding its siblings.
func (p *EbayParser) ParseVariations(html string, baseTitle string) []models.AnalyzedListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var model *variationModel
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "msku.JsonModel") {
			return true
		}
		m := p.variationModelPattern.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		var decoded variationModel
		if err := json.Unmarshal([]byte(m[1]), &decoded); err != nil {
			// Malformed payload, keep scanning the remaining scripts.
			return true
		}
		model = &decoded
		return false
	})

	if model == nil || len(model.Menu) == 0 {
		return nil
	}

	var listings []models.AnalyzedListing
	for _, entry := range decodeMenuEntries(model.Menu) {
		names := propValueNames(entry.PropVals)
		if len(names) == 0 {
			continue
		}
		fullTitle := baseTitle + " - " + strings.Join(names, " ")

		if entry.Price.Value <= 0 {
			continue
		}
		capacityTB, ok := p.ExtractCapacityTB(fullTitle)
		if !ok {
			continue
		}

		// Variants carry no URL of their own; the parent listing has it.
		if listing, ok := models.NewAnalyzedListing(fullTitle, "", entry.Price.Value, capacityTB); ok {
			listings = append(listings, listing)
		}
	}

	return listings
}

// decodeMenuEntries walks the menu object token by token so variants come out
// in payload order; unmarshalling into a map would scramble it.
func decodeMenuEntries(raw json.RawMessage) []variationEntry {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var entries []variationEntry
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return entries
		}
		// Consume the value whatever its type, then pick out the entries
		// that actually look like variants. A stray scalar or array in the
		// menu only loses itself, not its siblings.
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return entries
		}
		var entry variationEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// propValueNames collects the variant attribute display values, preserving
// the order they appear in the payload so composed titles are stable.
func propValueNames(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var names []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return names
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return names
		}
		var prop struct {
			ValueName string `json:"valueName"`
		}
		if err := json.Unmarshal(raw, &prop); err != nil {
			continue
		}
		if prop.ValueName != "" {
			names = append(names, prop.ValueName)
		}
	}
	return names
}
