package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pattern-scanner/internal/logging"
	"pattern-scanner/internal/market"
)

// Client fetches klines from a Binance-compatible REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a live data source against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.WithComponent("datasource"),
	}
}

// intervalFor maps a timeframe onto the exchange kline interval.
func intervalFor(tf market.Timeframe) string {
	switch tf {
	case market.Weekly:
		return "1w"
	case market.FourHour:
		return "4h"
	default:
		return "1d"
	}
}

// GetSeries fetches candlesticks and converts them to a bar series.
func (c *Client) GetSeries(ctx context.Context, symbol string, tf market.Timeframe, limit int) (*market.Series, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", intervalFor(tf))
	params.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, params.Encode())
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error fetching klines for %s: %w", symbol, err)
	}

	var raw [][]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error parsing klines: %w", err)
	}

	bars := make([]market.Bar, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		openTime, _ := k[0].(float64)
		bars = append(bars, market.Bar{
			Time:   time.UnixMilli(int64(openTime)).UTC(),
			Open:   parseFloat(k[1]),
			High:   parseFloat(k[2]),
			Low:    parseFloat(k[3]),
			Close:  parseFloat(k[4]),
			Volume: parseFloat(k[5]),
		})
	}

	c.logger.Debug("fetched series", "symbol", symbol, "timeframe", string(tf), "bars", len(bars))
	return &market.Series{Symbol: symbol, Timeframe: tf, Bars: bars}, nil
}

// GetCurrentPrice fetches the latest trade price.
func (c *Client) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", c.baseURL, url.QueryEscape(symbol))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("error fetching price for %s: %w", symbol, err)
	}

	var result struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("error parsing price: %w", err)
	}
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing price value: %w", err)
	}
	return price, nil
}

// GetAllSymbols lists the tradable symbols on the exchange.
func (c *Client) GetAllSymbols(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/v3/exchangeInfo", c.baseURL)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error fetching exchange info: %w", err)
	}

	var info struct {
		Symbols []struct {
			Symbol string `json:"symbol"`
			Status string `json:"status"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("error parsing exchange info: %w", err)
	}

	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status == "TRADING" {
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: %s", string(body))
	}
	return body, nil
}

func parseFloat(v interface{}) float64 {
	switch val := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	case float64:
		return val
	default:
		return 0
	}
}
