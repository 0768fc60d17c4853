/*
This file is used to fetch historical hourly price data from the CryptoCompare API
and turn it into price paths a simulation can replay.
*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/elys-network/hedgevault/internal/logger"
	"github.com/elys-network/hedgevault/internal/types"
)

var ErrInvalidPriceData = errors.New("invalid price data received")
var ErrInsufficientData = errors.New("insufficient price data")
var ErrAPIConfiguration = errors.New("API configuration error")

const (
	DEFAULT_BASE_URL    = "https://min-api.cryptocompare.com/data/v2/histohour"
	DEFAULT_MAX_RETRIES = 3
	DEFAULT_TIMEOUT     = 30 * time.Second
	MAX_HOURS_PER_CALL  = 2000
)

type histoPoint struct {
	Time       int64   `json:"time"`
	Close      float64 `json:"close"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Open       float64 `json:"open"`
	VolumeFrom float64 `json:"volumefrom"`
	VolumeTo   float64 `json:"volumeto"`
}

type CryptoCompareResponse struct {
	Response   string `json:"Response"`
	Message    string `json:"Message"`
	HasWarning bool   `json:"HasWarning"`
	Data       struct {
		TimeFrom int64        `json:"TimeFrom"`
		TimeTo   int64        `json:"TimeTo"`
		Data     []histoPoint `json:"Data"`
	} `json:"Data"`
}

// PriceClientConfig configures a PriceClient. Zero fields take the defaults above.
type PriceClientConfig struct {
	BaseURL    string
	APIKey     string
	MaxRetries int
	Backoff    time.Duration // Wait before retry n is n * Backoff
	Timeout    time.Duration
}

// PriceClient fetches hourly close prices
type PriceClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	backoff    time.Duration
}

// NewPriceClient creates a PriceClient. An API key is required.
func NewPriceClient(cfg PriceClientConfig) (*PriceClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: CRYPTOCOMPARE_API is required", ErrAPIConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DEFAULT_BASE_URL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DEFAULT_MAX_RETRIES
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DEFAULT_TIMEOUT
	}
	return &PriceClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
	}, nil
}

// validatePriceDataPoint performs strict validation on individual price data points
func validatePriceDataPoint(data histoPoint, coin string) error {
	if data.Time <= 0 {
		return fmt.Errorf("invalid timestamp for %s: %d", coin, data.Time)
	}

	prices := []struct {
		value float64
		name  string
	}{
		{data.Close, "close"},
		{data.High, "high"},
		{data.Low, "low"},
		{data.Open, "open"},
	}
	for _, price := range prices {
		if math.IsNaN(price.value) || math.IsInf(price.value, 0) {
			return fmt.Errorf("%s price for %s is not finite: %f", price.name, coin, price.value)
		}
		if price.value <= 0 {
			return fmt.Errorf("%s price for %s must be positive: %f", price.name, coin, price.value)
		}
	}

	if data.High < data.Low {
		return fmt.Errorf("high price (%f) cannot be less than low price (%f) for %s", data.High, data.Low, coin)
	}
	if data.Close < data.Low || data.Close > data.High {
		return fmt.Errorf("close price (%f) must be between low (%f) and high (%f) for %s", data.Close, data.Low, data.High, coin)
	}

	if data.VolumeFrom < 0 || data.VolumeTo < 0 {
		return fmt.Errorf("volume for %s cannot be negative", coin)
	}
	return nil
}

// FetchHourlyPrices fetches the most recent hours+1 hourly closes of coin quoted in quote,
// oldest first, so that the path spans hours price changes.
func (c *PriceClient) FetchHourlyPrices(ctx context.Context, coin, quote string, hours int) ([]types.PriceData, error) {
	priceLogger := logger.GetForComponent("price_retriever")

	coin = strings.TrimSpace(strings.ToUpper(coin))
	quote = strings.TrimSpace(strings.ToUpper(quote))
	if coin == "" || quote == "" {
		return nil, fmt.Errorf("%w: coin and quote are required", ErrAPIConfiguration)
	}
	if hours < 1 || hours > MAX_HOURS_PER_CALL {
		return nil, fmt.Errorf("%w: hours must be between 1 and %d, got %d", ErrAPIConfiguration, MAX_HOURS_PER_CALL, hours)
	}

	q := url.Values{}
	q.Set("fsym", coin)
	q.Set("tsym", quote)
	q.Set("limit", strconv.Itoa(hours))
	q.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "?" + q.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		priceLogger.Debug().
			Str("coin", coin).
			Int("attempt", attempt).
			Int("maxRetries", c.maxRetries).
			Msg("Making API request")

		result, err := c.fetchOnce(ctx, reqURL, coin, hours)
		if err == nil {
			priceLogger.Info().
				Str("coin", coin).
				Int("dataPoints", len(result)).
				Time("oldestData", result[0].Timestamp).
				Time("newestData", result[len(result)-1].Timestamp).
				Msg("Successfully retrieved and validated price data")
			return result, nil
		}
		lastErr = err

		// Data errors will not improve with a retry
		if errors.Is(err, ErrInvalidPriceData) || errors.Is(err, ErrInsufficientData) {
			break
		}

		priceLogger.Warn().
			Err(err).
			Str("coin", coin).
			Int("attempt", attempt).
			Msg("Price request failed, will retry if attempts remain")

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}

	priceLogger.Error().
		Err(lastErr).
		Str("coin", coin).
		Msg("Failed to fetch price data")
	return nil, fmt.Errorf("failed to fetch price data for %s: %w", coin, lastErr)
}

func (c *PriceClient) fetchOnce(ctx context.Context, reqURL, coin string, hours int) ([]types.PriceData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAPIConfiguration, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	return processAPIResponse(resp, coin, hours)
}

// processAPIResponse handles the API response with strict validation
func processAPIResponse(resp *http.Response, coin string, hours int) ([]types.PriceData, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d for %s", resp.StatusCode, coin)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", coin, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body for %s", coin)
	}

	var cryptoResp CryptoCompareResponse
	if err := json.Unmarshal(body, &cryptoResp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response for %s: %w", coin, err)
	}

	if cryptoResp.Response != "Success" {
		return nil, fmt.Errorf("API error for %s: %s - %s", coin, cryptoResp.Response, cryptoResp.Message)
	}

	points := cryptoResp.Data.Data
	if len(points) < hours+1 {
		return nil, fmt.Errorf("%w for %s: received %d points, required %d", ErrInsufficientData, coin, len(points), hours+1)
	}

	priceData := make([]types.PriceData, 0, len(points))
	for i, data := range points {
		if err := validatePriceDataPoint(data, coin); err != nil {
			return nil, fmt.Errorf("%w: data point %d: %w", ErrInvalidPriceData, i, err)
		}
		priceData = append(priceData, types.PriceData{
			Timestamp: time.Unix(data.Time, 0).UTC(),
			Price:     data.Close,
		})
	}

	sort.Slice(priceData, func(i, j int) bool {
		return priceData[i].Timestamp.Before(priceData[j].Timestamp)
	})
	validateTimeSequence(priceData, coin)

	// Take exactly the required number of most recent data points
	return priceData[len(priceData)-(hours+1):], nil
}

// validateTimeSequence warns about gaps that are not roughly one hour apart
func validateTimeSequence(priceData []types.PriceData, coin string) {
	priceLogger := logger.GetForComponent("price_retriever")
	for i := 1; i < len(priceData); i++ {
		timeDiff := priceData[i].Timestamp.Sub(priceData[i-1].Timestamp)
		if timeDiff < 30*time.Minute || timeDiff > 90*time.Minute {
			priceLogger.Warn().
				Str("coin", coin).
				Int("index", i).
				Dur("gap", timeDiff).
				Msg("Unusual gap between hourly data points")
		}
	}
}

// AlignSeries keeps the timestamps present in both series and returns their prices in order.
func AlignSeries(primary, secondary []types.PriceData) ([]float64, []float64, error) {
	byTime := make(map[int64]float64, len(secondary))
	for _, d := range secondary {
		byTime[d.Timestamp.Unix()] = d.Price
	}

	var p, s []float64
	for _, d := range primary {
		if sp, ok := byTime[d.Timestamp.Unix()]; ok {
			p = append(p, d.Price)
			s = append(s, sp)
		}
	}
	if len(p) < 2 {
		return nil, nil, fmt.Errorf("%w: series share %d timestamps", ErrInsufficientData, len(p))
	}
	return p, s, nil
}
