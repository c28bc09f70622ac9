package shared

import (
	"context"
	"time"
)

// MarketFetcher defines the requirements for fetching historical market data.
type MarketFetcher interface {
	// FetchHistorical fetches historical market data for the provided
	// timeframe and window.
	FetchHistorical(ctx context.Context, market string, timeframe Timeframe, start time.Time, end time.Time) ([]Candlestick, error)
}
