package scraper

import "context"

// Fetcher retrieves one page. Transport concerns (headers, timeouts, the
// politeness delay) live behind this interface; the controller only sees
// success or failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusSkipped StatusKind = "skipped"
	StatusInfo    StatusKind = "info"
)

type StatusCategory string

const (
	CategorySingle    StatusCategory = "single"
	CategoryVariation StatusCategory = "variation"
	CategorySystem    StatusCategory = "system"
)

// StatusEvent describes the outcome of one processed or skipped record.
type StatusEvent struct {
	Kind       StatusKind
	Category   StatusCategory
	Title      string
	PricePerTB float64
	HasPrice   bool
	Detail     string
}

// StatusSink receives per-record status events and page markers. The analysis
// log writer implements it; the controller does not own any formatting.
type StatusSink interface {
	PageStarted(page int)
	Record(ev StatusEvent)
}

type nopSink struct{}

func (nopSink) PageStarted(int)    {}
func (nopSink) Record(StatusEvent) {}
