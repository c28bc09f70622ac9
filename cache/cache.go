// Package cache provides a time-bounded price series cache backed by rqlite,
// so repeated analysis requests do not refetch identical market data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"go.uber.org/atomic"
)

const (
	// DefaultTTL is the default validity window of a cached price series.
	DefaultTTL = time.Hour * 6

	// SQL statements.
	createCacheTableSQL = "CREATE TABLE IF NOT EXISTS pricecache (key TEXT PRIMARY KEY, payload TEXT, createdon INTEGER)"
	findCacheEntrySQL   = "SELECT payload, createdon FROM pricecache WHERE key = ?"
	upsertCacheEntrySQL = "INSERT OR REPLACE INTO pricecache(key, payload, createdon) VALUES(?,?,?)"
	purgeExpiredSQL     = "DELETE FROM pricecache WHERE createdon < ?"
)

// PriceStorer defines the requirements for caching price series.
type PriceStorer interface {
	// Get fetches the cached series for the provided key, reporting whether a
	// valid entry exists.
	Get(ctx context.Context, key string) ([]shared.Candlestick, bool, error)
	// Put stores the provided series under the provided key.
	Put(ctx context.Context, key string, candles []shared.Candlestick) error
	// PurgeExpired removes entries older than the cache validity window.
	PurgeExpired(ctx context.Context) error
}

// CacheConfig is the configuration for the price cache.
type CacheConfig struct {
	// Endpoint represents the cache store connection endpoint.
	Endpoint string
	// User is the cache store user.
	User string
	// Pass is the cache store user pass.
	Pass string
	// TTL is the validity window of a cached entry.
	TTL time.Duration
	// Logger is the cache logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *CacheConfig) Validate() error {
	var errs error

	if cfg.Endpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("cache endpoint cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Cache represents the price series cache.
type Cache struct {
	cfg    *CacheConfig
	client *rqlitehttp.Client
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Ensure the cache implements the PriceStorer interface.
var _ PriceStorer = (*Cache)(nil)

// Key derives the deterministic cache key for a price series request.
func Key(market string, timeframe shared.Timeframe, rng string) string {
	return fmt.Sprintf("%s-%s-%s", market, timeframe.String(), rng)
}

// NewCache initializes a new price cache.
func NewCache(ctx context.Context, cfg *CacheConfig) (*Cache, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating cache client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	c := &Cache{
		cfg:    cfg,
		client: client,
	}

	err = c.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping cache: %w", err)
	}

	return c, nil
}

// bootstrap initializes the cache table.
func (c *Cache) bootstrap(ctx context.Context) error {
	_, err := c.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createCacheTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// candleRecord is the serialized form of a cached candlestick.
type candleRecord struct {
	Date      string  `json:"date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Market    string  `json:"market"`
	Timeframe string  `json:"timeframe"`
}

// encodeCandles serializes a price series to its cache payload.
func encodeCandles(candles []shared.Candlestick) (string, error) {
	records := make([]candleRecord, 0, len(candles))
	for idx := range candles {
		candle := &candles[idx]
		records = append(records, candleRecord{
			Date:      candle.Date.Format(shared.DateLayout),
			Open:      candle.Open,
			High:      candle.High,
			Low:       candle.Low,
			Close:     candle.Close,
			Volume:    candle.Volume,
			Market:    candle.Market,
			Timeframe: candle.Timeframe.String(),
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding cache payload: %w", err)
	}

	return string(payload), nil
}

// decodeCandles parses a cache payload back into a price series.
func decodeCandles(payload string) ([]shared.Candlestick, error) {
	data := gjson.Parse(payload).Array()
	candles := make([]shared.Candlestick, 0, len(data))

	for idx := range data {
		var candle shared.Candlestick

		candle.Open = data[idx].Get("open").Float()
		candle.Low = data[idx].Get("low").Float()
		candle.High = data[idx].Get("high").Float()
		candle.Close = data[idx].Get("close").Float()
		candle.Volume = data[idx].Get("volume").Float()
		candle.Market = data[idx].Get("market").String()

		timeframe, err := shared.ParseTimeframe(data[idx].Get("timeframe").String())
		if err != nil {
			return nil, fmt.Errorf("parsing cached candlestick timeframe: %w", err)
		}
		candle.Timeframe = timeframe

		dt, err := time.Parse(shared.DateLayout, data[idx].Get("date").String())
		if err != nil {
			return nil, fmt.Errorf("parsing cached candlestick date: %w", err)
		}

		candle.Date = dt
		candles = append(candles, candle)
	}

	return candles, nil
}

// Get fetches the cached series for the provided key. Expired or undecodable
// entries count as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]shared.Candlestick, bool, error) {
	resp, err := c.client.QuerySingle(ctx, findCacheEntrySQL, key)
	if err != nil {
		return nil, false, fmt.Errorf("querying cache entry %s: %w", key, err)
	}

	results := resp.GetQueryResultsAssoc()
	if len(results) == 0 || len(results[0].Rows) == 0 {
		c.misses.Inc()
		return nil, false, nil
	}

	row := results[0].Rows[0]
	payload, payloadOk := row["payload"].(string)
	createdOn, createdOk := row["createdon"].(float64)
	if !payloadOk || !createdOk {
		c.cfg.Logger.Error().Msgf("unexpected cache row shape for %s: %s", key, spew.Sdump(row))
		c.misses.Inc()
		return nil, false, nil
	}

	if time.Since(time.Unix(int64(createdOn), 0)) >= c.cfg.TTL {
		c.misses.Inc()
		return nil, false, nil
	}

	candles, err := decodeCandles(payload)
	if err != nil {
		c.cfg.Logger.Error().Msgf("decoding cache entry %s: %v", key, err)
		c.misses.Inc()
		return nil, false, nil
	}

	c.hits.Inc()
	return candles, true, nil
}

// Put stores the provided series under the provided key.
func (c *Cache) Put(ctx context.Context, key string, candles []shared.Candlestick) error {
	payload, err := encodeCandles(candles)
	if err != nil {
		return err
	}

	resp, err := c.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              upsertCacheEntrySQL,
			PositionalParams: []any{key, payload, time.Now().Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return fmt.Errorf("storing cache entry %s: %w", key, err)
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("storing cache entry %s: %d -> %s", key, idx, errStr)
	}

	return nil
}

// PurgeExpired removes entries older than the cache validity window.
func (c *Cache) PurgeExpired(ctx context.Context) error {
	cutoff := time.Now().Add(-c.cfg.TTL).Unix()

	resp, err := c.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              purgeExpiredSQL,
			PositionalParams: []any{cutoff},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return fmt.Errorf("purging expired cache entries: %w", err)
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("purging expired cache entries: %d -> %s", idx, errStr)
	}

	return nil
}

// Stats returns the cache hit and miss counts.
func (c *Cache) Stats() (uint64, uint64) {
	return c.hits.Load(), c.misses.Load()
}
