package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
	"github.com/pip3-kill-me/ebay-scraper/internal/parser"
)

// State is the controller's position in its pagination state machine. The
// three stopped states are terminal: once reached, no further fetches happen.
type State int

const (
	StateSearching State = iota
	StateStoppedSuccess
	StateStoppedExhausted
	StateStoppedFailure
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateStoppedSuccess:
		return "stopped_success"
	case StateStoppedExhausted:
		return "stopped_exhausted"
	case StateStoppedFailure:
		return "stopped_failure"
	default:
		return "unknown"
	}
}

func (s State) Terminal() bool {
	return s != StateSearching
}

// DefaultEmptyPageLimit is how many consecutive result-less pages end the
// crawl as exhausted.
const DefaultEmptyPageLimit = 5

// Controller walks search pages one at a time, resolves each listing into
// zero or more analyzed listings, and decides when to stop. All fetches are
// sequential; SearchState is mutated only inside Run.
type Controller struct {
	fetcher        Fetcher
	parser         parser.Parser
	sink           StatusSink
	logger         *slog.Logger
	emptyPageLimit int
}

type Options struct {
	EmptyPageLimit int
	Sink           StatusSink
	Logger         *slog.Logger
}

func NewController(fetcher Fetcher, p parser.Parser, opts Options) *Controller {
	if opts.EmptyPageLimit <= 0 {
		opts.EmptyPageLimit = DefaultEmptyPageLimit
	}
	if opts.Sink == nil {
		opts.Sink = nopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		fetcher:        fetcher,
		parser:         p,
		sink:           opts.Sink,
		logger:         opts.Logger.With("component", "search_controller"),
		emptyPageLimit: opts.EmptyPageLimit,
	}
}

// Result is the outcome of one full run. Listings holds every analyzed
// listing in accumulation order, valid or not; Rank produces the final view.
type Result struct {
	State      State
	Pages      int
	Listings   []models.AnalyzedListing
	ValidCount int
}

// Run crawls search pages until the desired number of in-bounds results is
// accumulated, the empty-page limit is hit, or a fetch fails. Record-level
// parse failures never stop the run; they are logged and skipped.
func (c *Controller) Run(ctx context.Context, term string, bounds models.Bounds) (*Result, error) {
	if strings.TrimSpace(term) == "" {
		return nil, errors.New("search term must not be empty")
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	state := StateSearching
	page := 1
	emptyPages := 0
	var analyzed []models.AnalyzedListing
	validCount := 0

	for state == StateSearching {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.logger.Info("searching page", "page", page)
		c.sink.PageStarted(page)

		html, err := c.fetcher.Fetch(ctx, SearchURL(term, page))
		if err != nil {
			c.logger.Error("failed to retrieve search page", "page", page, "error", err)
			state = StateStoppedFailure
			break
		}

		raw, err := c.parser.ParseSearchPage(html)
		if err != nil {
			c.logger.Warn("search page did not parse", "page", page, "error", err)
		}

		if len(raw) == 0 {
			emptyPages++
			c.logger.Info("no listings found", "page", page, "empty_pages", emptyPages, "limit", c.emptyPageLimit)
			c.sink.Record(StatusEvent{Kind: StatusInfo, Category: CategorySystem, Detail: "No listings found on this page."})
			if emptyPages >= c.emptyPageLimit {
				state = StateStoppedExhausted
			} else {
				page++
			}
			continue
		}
		// Raw listings were present, even if none of them turn out parseable.
		emptyPages = 0

		for _, listing := range raw {
			if listing.IsMultiVariant {
				variants, err := c.resolveVariations(ctx, listing)
				if err != nil {
					c.logger.Error("failed to retrieve product page", "url", listing.URL, "error", err)
					state = StateStoppedFailure
					break
				}
				analyzed = append(analyzed, variants...)
				continue
			}

			if result, ok := c.analyzeSingle(listing); ok {
				analyzed = append(analyzed, result)
				c.sink.Record(StatusEvent{
					Kind:       StatusSuccess,
					Category:   CategorySingle,
					Title:      result.Title,
					PricePerTB: result.PricePerTB,
					HasPrice:   true,
				})
			} else {
				c.sink.Record(StatusEvent{
					Kind:     StatusSkipped,
					Category: CategorySingle,
					Title:    listing.Title,
					Detail:   "N/A (no capacity/price)",
				})
			}
		}
		if state != StateSearching {
			break
		}

		// The valid count is only re-evaluated after the whole page, so a
		// target reached mid-page still finishes the page's listings.
		validCount = CountValid(analyzed, bounds)
		c.logger.Info("page processed", "page", page, "valid", validCount, "desired", bounds.DesiredCount)

		if validCount >= bounds.DesiredCount {
			state = StateStoppedSuccess
		} else {
			page++
		}
	}

	// A failure exit can leave the loop between listings, after validCount
	// was last evaluated; the result reflects everything accumulated.
	return &Result{
		State:      state,
		Pages:      page,
		Listings:   analyzed,
		ValidCount: CountValid(analyzed, bounds),
	}, nil
}

// analyzeSingle turns a single-price listing into an analyzed listing, or
// reports that it cannot be priced.
func (c *Controller) analyzeSingle(listing models.RawListing) (models.AnalyzedListing, bool) {
	capacityTB, ok := c.parser.ExtractCapacityTB(listing.Title)
	if !ok {
		return models.AnalyzedListing{}, false
	}
	price, ok := c.parser.ExtractPrice(listing.PriceText)
	if !ok {
		return models.AnalyzedListing{}, false
	}
	return models.NewAnalyzedListing(listing.Title, listing.URL, price, capacityTB)
}

// resolveVariations fetches a multi-variant listing's detail page and expands
// it. Only the fetch itself can fail; an unreadable variation payload is a
// skip, not an error.
func (c *Controller) resolveVariations(ctx context.Context, listing models.RawListing) ([]models.AnalyzedListing, error) {
	c.logger.Info("resolving multi-variant listing", "title", listing.Title)

	html, err := c.fetcher.Fetch(ctx, listing.URL)
	if err != nil {
		return nil, err
	}

	variants := c.parser.ParseVariations(html, listing.Title)
	if len(variants) == 0 {
		c.sink.Record(StatusEvent{
			Kind:     StatusSkipped,
			Category: CategoryVariation,
			Title:    listing.Title,
			Detail:   "Could not extract",
		})
		return nil, nil
	}

	for _, v := range variants {
		c.sink.Record(StatusEvent{
			Kind:       StatusSuccess,
			Category:   CategoryVariation,
			Title:      v.Title,
			PricePerTB: v.PricePerTB,
			HasPrice:   true,
		})
	}
	return variants, nil
}
