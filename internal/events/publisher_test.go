package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

type fakeRedis struct {
	added []*redis.XAddArgs
	err   error
}

func (f *fakeRedis) XAdd(_ context.Context, args *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, args)
	cmd := redis.NewStringCmd(context.Background())
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func TestPublishDealFound(t *testing.T) {
	client := &fakeRedis{}
	pub := NewPublisher(client, "deal-events", slog.Default())

	listing := models.AnalyzedListing{
		Title:      "2TB SSD",
		PriceUSD:   150,
		CapacityTB: 2,
		PricePerTB: 75,
		URL:        "https://www.ebay.com/itm/1",
	}

	err := pub.PublishDealFound(context.Background(), "run-1", "nvme ssd", listing)
	require.NoError(t, err)
	require.Len(t, client.added, 1)
	assert.Equal(t, "deal-events", client.added[0].Stream)

	raw, ok := client.added[0].Values.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, EventTypeDealFound, raw["event_type"])

	var payload DealFoundPayload
	require.NoError(t, json.Unmarshal([]byte(raw["payload"].(string)), &payload))
	assert.Equal(t, "2TB SSD", payload.Title)
	assert.Equal(t, 75.0, payload.PricePerTB)
	assert.Equal(t, "run-1", payload.RunID)
	assert.NotEmpty(t, payload.EventID)
}

func TestPublishDealsCountsFailures(t *testing.T) {
	client := &fakeRedis{err: errors.New("redis down")}
	pub := NewPublisher(client, "deal-events", slog.Default())

	published := pub.PublishDeals(context.Background(), "run-1", "ssd", []models.AnalyzedListing{
		{Title: "a", PriceUSD: 1, CapacityTB: 1, PricePerTB: 1},
		{Title: "b", PriceUSD: 2, CapacityTB: 1, PricePerTB: 2},
	})

	assert.Equal(t, 0, published)
	assert.Len(t, client.added, 2)
}
