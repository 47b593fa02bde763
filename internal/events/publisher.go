package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// EventTypeDealFound is published for every listing that lands inside the
// requested price-per-TB bounds.
const EventTypeDealFound = "DEAL_FOUND"

// RedisClient is the slice of the redis API the publisher needs; tests
// substitute a fake.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// DealFoundPayload is the stream message for one in-bounds listing.
type DealFoundPayload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id,omitempty"`
	SearchTerm string    `json:"search_term"`
	Title      string    `json:"title"`
	PriceUSD   float64   `json:"price_usd"`
	CapacityTB float64   `json:"capacity_tb"`
	PricePerTB float64   `json:"price_per_tb"`
	URL        string    `json:"url,omitempty"`
}

// Publisher pushes deal events onto a Redis stream for downstream consumers
// (alerting, dashboards). Publishing failures never fail an analysis run.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "deal_publisher"),
	}
}

// PublishDealFound emits one DEAL_FOUND event for a valid listing.
func (p *Publisher) PublishDealFound(ctx context.Context, runID, searchTerm string, listing models.AnalyzedListing) error {
	payload := DealFoundPayload{
		EventID:    uuid.New().String(),
		EventType:  EventTypeDealFound,
		Timestamp:  time.Now().UTC(),
		RunID:      runID,
		SearchTerm: searchTerm,
		Title:      listing.Title,
		PriceUSD:   listing.PriceUSD,
		CapacityTB: listing.CapacityTB,
		PricePerTB: listing.PricePerTB,
		URL:        listing.URL,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal deal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": payload.EventType,
			"payload":    string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish deal event: %w", err)
	}

	p.logger.Debug("published deal event", "title", listing.Title, "price_per_tb", listing.PricePerTB)
	return nil
}

// PublishDeals emits one event per listing and reports how many succeeded.
func (p *Publisher) PublishDeals(ctx context.Context, runID, searchTerm string, listings []models.AnalyzedListing) int {
	published := 0
	for _, l := range listings {
		if err := p.PublishDealFound(ctx, runID, searchTerm, l); err != nil {
			p.logger.Error("failed to publish deal", "title", l.Title, "error", err)
			continue
		}
		published++
	}
	return published
}
