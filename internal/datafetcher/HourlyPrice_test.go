package datafetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startUnix = int64(1700000000)

func histo(closes ...float64) CryptoCompareResponse {
	var resp CryptoCompareResponse
	resp.Response = "Success"
	for i, c := range closes {
		resp.Data.Data = append(resp.Data.Data, histoPoint{
			Time:  startUnix + int64(i)*3600,
			Close: c, High: c * 1.01, Low: c * 0.99, Open: c,
		})
	}
	return resp
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *PriceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewPriceClient(PriceClientConfig{BaseURL: srv.URL, APIKey: "key", MaxRetries: 3, Backoff: time.Millisecond})
	require.NoError(t, err)
	return c
}

func TestNewPriceClient_RequiresKey(t *testing.T) {
	_, err := NewPriceClient(PriceClientConfig{})
	assert.ErrorIs(t, err, ErrAPIConfiguration)
}

func TestFetchHourlyPrices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ETH", r.URL.Query().Get("fsym"))
		assert.Equal(t, "USD", r.URL.Query().Get("tsym"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		json.NewEncoder(w).Encode(histo(1.0, 2.0, 2.1, 2.2, 2.3))
	})

	data, err := c.FetchHourlyPrices(context.Background(), " eth", "usd", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 2.1, 2.2, 2.3}, types.Closes(data), "keeps the most recent hours+1 points")
	assert.Equal(t, time.Unix(startUnix+3600, 0).UTC(), data[0].Timestamp)
}

func TestFetchHourlyPrices_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(histo(1, 1.1))
	})

	data, err := c.FetchHourlyPrices(context.Background(), "ETH", "USD", 1)
	require.NoError(t, err)
	assert.Len(t, data, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchHourlyPrices_DataErrorsAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(histo(1, -2, 3))
	})

	_, err := c.FetchHourlyPrices(context.Background(), "ETH", "USD", 2)
	assert.ErrorIs(t, err, ErrInvalidPriceData)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchHourlyPrices_Insufficient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(histo(1, 2))
	})

	_, err := c.FetchHourlyPrices(context.Background(), "ETH", "USD", 5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFetchHourlyPrices_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"Error","Message":"rate limit"}`))
	})

	_, err := c.FetchHourlyPrices(context.Background(), "ETH", "USD", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestFetchHourlyPrices_InvalidArguments(t *testing.T) {
	c, err := NewPriceClient(PriceClientConfig{APIKey: "key"})
	require.NoError(t, err)

	_, err = c.FetchHourlyPrices(context.Background(), "", "USD", 1)
	assert.ErrorIs(t, err, ErrAPIConfiguration)
	_, err = c.FetchHourlyPrices(context.Background(), "ETH", "USD", 0)
	assert.ErrorIs(t, err, ErrAPIConfiguration)
}

func TestValidatePriceDataPoint(t *testing.T) {
	good := histoPoint{Time: startUnix, Close: 10, High: 11, Low: 9, Open: 10}
	assert.NoError(t, validatePriceDataPoint(good, "ETH"))

	bad := good
	bad.High = 8
	assert.Error(t, validatePriceDataPoint(bad, "ETH"))

	bad = good
	bad.Close = 12
	assert.Error(t, validatePriceDataPoint(bad, "ETH"))

	bad = good
	bad.Time = 0
	assert.Error(t, validatePriceDataPoint(bad, "ETH"))
}

func TestAlignSeries(t *testing.T) {
	at := func(h int64, p float64) types.PriceData {
		return types.PriceData{Timestamp: time.Unix(startUnix+h*3600, 0), Price: p}
	}
	primary := []types.PriceData{at(0, 1), at(1, 2), at(2, 3), at(3, 4)}
	secondary := []types.PriceData{at(1, 0.99), at(3, 1.01), at(5, 1.0)}

	p, s, err := AlignSeries(primary, secondary)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, p)
	assert.Equal(t, []float64{0.99, 1.01}, s)

	_, _, err = AlignSeries(primary, secondary[2:])
	assert.ErrorIs(t, err, ErrInsufficientData)
}
