// Package kalshi is a thin client for Kalshi's public trade API, plus
// the ticker-extraction rules used to turn free-form user input into a
// market identifier.
//
// API docs: https://docs.kalshi.com/
package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public elections trade API.
const DefaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

// Market is a normalized market record. Prices are in dollars.
type Market struct {
	Ticker         string
	Title          string
	RulesPrimary   string
	RulesSecondary string
	ExpirationTime string
	Status         string
	YesBid         float64
	YesAsk         float64
	NoBid          float64
	NoAsk          float64
	LastPrice      float64
	Volume         int64
}

// ResolutionCriteria joins the primary and secondary rules text.
func (m *Market) ResolutionCriteria() string {
	if m.RulesSecondary == "" {
		return m.RulesPrimary
	}
	return m.RulesPrimary + "\n\nAdditional terms: " + m.RulesSecondary
}

// APIError reports a failed API interaction. NotFound distinguishes a
// missing market (recoverable by re-checking the ticker) from transport
// or server trouble.
type APIError struct {
	Ticker     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.NotFound() {
		return fmt.Sprintf("market %q not found on Kalshi", e.Ticker)
	}
	return fmt.Sprintf("kalshi API error: %s", e.Message)
}

// NotFound reports whether the market does not exist.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 10 * time.Second,
	}
}

// Client fetches market data over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with default settings.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom settings.
func NewClientWithConfig(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// marketPayload mirrors the wire format. Numeric fields arrive as
// numbers, strings, or null depending on market state, so they decode
// through looseFloat/looseInt which normalize anything unparseable to 0
// rather than failing the whole fetch.
type marketPayload struct {
	Market struct {
		Ticker                 string     `json:"ticker"`
		Title                  string     `json:"title"`
		YesSubTitle            string     `json:"yes_sub_title"`
		RulesPrimary           string     `json:"rules_primary"`
		RulesSecondary         string     `json:"rules_secondary"`
		ExpectedExpirationTime string     `json:"expected_expiration_time"`
		LatestExpirationTime   string     `json:"latest_expiration_time"`
		Status                 string     `json:"status"`
		YesBid                 looseFloat `json:"yes_bid_dollars"`
		YesAsk                 looseFloat `json:"yes_ask_dollars"`
		NoBid                  looseFloat `json:"no_bid_dollars"`
		NoAsk                  looseFloat `json:"no_ask_dollars"`
		LastPrice              looseFloat `json:"last_price_dollars"`
		Volume                 looseInt   `json:"volume_fp"`
	} `json:"market"`
}

// looseFloat decodes a JSON number, numeric string, or null to a
// float64, falling back to 0 on anything else.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = looseFloat(v)
	}
	return nil
}

// looseInt decodes a JSON number, numeric string, or null to an int64,
// falling back to 0 on anything else.
type looseInt int64

func (n *looseInt) UnmarshalJSON(data []byte) error {
	*n = 0
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = looseInt(v)
	} else if v, err := strconv.ParseFloat(s, 64); err == nil {
		*n = looseInt(v)
	}
	return nil
}

// FetchMarket fetches a single market by ticker.
func (c *Client) FetchMarket(ctx context.Context, ticker string) (*Market, error) {
	endpoint := fmt.Sprintf("%s/markets/%s", c.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &APIError{Ticker: ticker, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Ticker: ticker, Message: fmt.Sprintf("failed to connect to Kalshi API: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Ticker: ticker, StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Ticker:     ticker,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var payload marketPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &APIError{Ticker: ticker, StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}

	m := payload.Market
	if m.Ticker == "" && m.Title == "" {
		return nil, &APIError{Ticker: ticker, StatusCode: resp.StatusCode, Message: fmt.Sprintf("no market data returned for ticker %q", ticker)}
	}

	title := m.Title
	if title == "" {
		title = m.YesSubTitle
	}
	expiration := m.ExpectedExpirationTime
	if expiration == "" {
		expiration = m.LatestExpirationTime
	}

	out := &Market{
		Ticker:         m.Ticker,
		Title:          title,
		RulesPrimary:   m.RulesPrimary,
		RulesSecondary: m.RulesSecondary,
		ExpirationTime: expiration,
		Status:         m.Status,
		YesBid:         float64(m.YesBid),
		YesAsk:         float64(m.YesAsk),
		NoBid:          float64(m.NoBid),
		NoAsk:          float64(m.NoAsk),
		LastPrice:      float64(m.LastPrice),
		Volume:         int64(m.Volume),
	}
	if out.Ticker == "" {
		out.Ticker = ticker
	}
	return out, nil
}

// MarketSummary is one row of a market search result.
type MarketSummary struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// SearchMarkets lists open markets whose title or ticker contains query
// (case-insensitive), up to limit results.
func (c *Client) SearchMarkets(ctx context.Context, query string, limit int) ([]MarketSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	endpoint := fmt.Sprintf("%s/markets?status=open&limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to search markets: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("search returned status %d", resp.StatusCode)}
	}

	var payload struct {
		Markets []MarketSummary `json:"markets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed search response: %v", err)}
	}

	q := strings.ToLower(query)
	var matching []MarketSummary
	for _, m := range payload.Markets {
		if strings.Contains(strings.ToLower(m.Title), q) || strings.Contains(strings.ToLower(m.Ticker), q) {
			matching = append(matching, m)
			if len(matching) == limit {
				break
			}
		}
	}
	return matching, nil
}
