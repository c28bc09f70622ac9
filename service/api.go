// Package service exposes the Elliott Wave analyzer over HTTP, assembling the
// fetch, cache and analysis components.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/m-zayed5722/elliott-wave-analyzer/cache"
	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
	"github.com/m-zayed5722/elliott-wave-analyzer/wave"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// shutdownTimeout bounds the graceful server shutdown.
	shutdownTimeout = time.Second * 5
	// defaultRange is the price history range used when a request omits one.
	defaultRange = "5y"
)

// APIConfig represents the configuration struct for the analyzer service.
type APIConfig struct {
	// ListenAddr is the address the http server listens on.
	ListenAddr string
	// Fetcher fetches historical market data.
	Fetcher shared.MarketFetcher
	// Store caches fetched price series.
	Store cache.PriceStorer
	// Analysis carries the engine tunables.
	Analysis *shared.AnalysisConfig
	// Logger is the service logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *APIConfig) Validate() error {
	var errs error

	if cfg.ListenAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("market fetcher cannot be nil"))
	}
	if cfg.Store == nil {
		errs = errors.Join(errs, fmt.Errorf("price store cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// API represents the analyzer http service.
type API struct {
	cfg    *APIConfig
	router *gin.Engine
	logger *zerolog.Logger
}

// NewAPI initializes a new analyzer service.
func NewAPI(cfg *APIConfig) (*API, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.Analysis == nil {
		cfg.Analysis = shared.DefaultAnalysisConfig()
	}

	err = cfg.Analysis.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating analysis config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := &API{
		cfg:    cfg,
		router: router,
		logger: cfg.Logger,
	}

	router.GET("/health", api.handleHealth)
	router.GET("/prices/:market", api.handlePrices)
	router.POST("/analyze", api.handleAnalyze)

	return api, nil
}

// Router returns the service's http handler.
func (a *API) Router() http.Handler {
	return a.router
}

// Run starts the http server and the periodic cache purge job, shutting both
// down when the provided context is cancelled.
func (a *API) Run(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	_, err := scheduler.Every(1).Hour().Do(func() {
		purgeErr := a.cfg.Store.PurgeExpired(context.Background())
		if purgeErr != nil {
			a.logger.Error().Msgf("purging expired cache entries: %v", purgeErr)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling cache purge job: %w", err)
	}

	scheduler.StartAsync()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    a.cfg.ListenAddr,
		Handler: a.router,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr := srv.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			a.logger.Error().Msgf("shutting down http server: %v", shutdownErr)
		}
	}()

	a.logger.Info().Msgf("analyzer service listening on %s", a.cfg.ListenAddr)

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running http server: %w", err)
	}

	return nil
}

// rangeStart resolves a history range string to its starting time.
func rangeStart(rng string, now time.Time) time.Time {
	switch strings.ToLower(rng) {
	case "1m":
		return now.AddDate(0, -1, 0)
	case "3m":
		return now.AddDate(0, -3, 0)
	case "6m":
		return now.AddDate(0, -6, 0)
	case "1y":
		return now.AddDate(-1, 0, 0)
	case "2y":
		return now.AddDate(-2, 0, 0)
	case "10y":
		return now.AddDate(-10, 0, 0)
	default:
		return now.AddDate(-5, 0, 0)
	}
}

// loadSeries fetches the price series for the provided request, preferring the
// cache and falling back to the market fetcher. Cache failures degrade to a
// fetch, never to a request failure.
func (a *API) loadSeries(ctx context.Context, logger *zerolog.Logger, market string, timeframe shared.Timeframe, rng string) ([]shared.Candlestick, error) {
	key := cache.Key(market, timeframe, rng)

	candles, ok, err := a.cfg.Store.Get(ctx, key)
	if err != nil {
		logger.Warn().Msgf("fetching cache entry %s: %v", key, err)
	}
	if ok {
		return candles, nil
	}

	now := time.Now().UTC()
	candles, err = a.cfg.Fetcher.FetchHistorical(ctx, market, timeframe, rangeStart(rng, now), now)
	if err != nil {
		return nil, err
	}

	err = a.cfg.Store.Put(ctx, key, candles)
	if err != nil {
		logger.Warn().Msgf("storing cache entry %s: %v", key, err)
	}

	return candles, nil
}

// handleHealth reports service liveness.
func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// priceResponse is the serialized form of a candlestick returned by the
// prices endpoint.
type priceResponse struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// handlePrices serves cached OHLC price data for a market.
func (a *API) handlePrices(c *gin.Context) {
	market := strings.ToUpper(c.Param("market"))

	timeframe, err := shared.ParseTimeframe(c.DefaultQuery("tf", "daily"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rng := c.DefaultQuery("range", defaultRange)

	requestLogger := a.logger.With().Str("request", uuid.NewString()).Logger()
	candles, err := a.loadSeries(c.Request.Context(), &requestLogger, market, timeframe, rng)
	if err != nil {
		requestLogger.Error().Msgf("loading price series for %s: %v", market, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("fetching price data for %s failed", market)})
		return
	}

	prices := make([]priceResponse, 0, len(candles))
	for idx := range candles {
		candle := &candles[idx]
		prices = append(prices, priceResponse{
			Timestamp: candle.Date.UTC().Format(time.RFC3339),
			Open:      candle.Open,
			High:      candle.High,
			Low:       candle.Low,
			Close:     candle.Close,
			Volume:    candle.Volume,
		})
	}

	c.JSON(http.StatusOK, prices)
}

// AnalyzeRequest represents an analysis request.
type AnalyzeRequest struct {
	Ticker    string   `json:"ticker"`
	Timeframe string   `json:"timeframe"`
	Range     string   `json:"range"`
	ZigZagPct *float64 `json:"zigzag_pct"`
}

// handleAnalyze runs the full analysis pipeline for the requested market.
func (a *API) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("decoding analyze request: %v", err)})
		return
	}

	if req.Ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker cannot be an empty string"})
		return
	}

	timeframe, err := shared.ParseTimeframe(req.Timeframe)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rng := req.Range
	if rng == "" {
		rng = defaultRange
	}

	pct := a.cfg.Analysis.Threshold(timeframe)
	if req.ZigZagPct != nil {
		pct = *req.ZigZagPct
	}

	market := strings.ToUpper(req.Ticker)
	requestLogger := a.logger.With().
		Str("request", uuid.NewString()).
		Str("market", market).
		Logger()

	candles, err := a.loadSeries(c.Request.Context(), &requestLogger, market, timeframe, rng)
	if err != nil {
		requestLogger.Error().Msgf("loading price series: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("fetching price data for %s failed", market)})
		return
	}

	result, err := wave.Analyze(candles, pct, a.cfg.Analysis)
	if err != nil {
		status := analysisStatus(err)
		requestLogger.Error().Msgf("analyzing %s: %v", market, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	requestLogger.Info().Msgf("analyzed %s: primary score %.1f, %d pivots",
		market, result.Primary.Score, len(result.Pivots))

	c.JSON(http.StatusOK, result)
}

// analysisStatus maps typed analysis errors to http status codes.
func analysisStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidThreshold), errors.Is(err, shared.ErrMalformedSeries):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
