package kalshi

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	tickerSegment = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	tickerToken   = regexp.MustCompile(`\b[A-Z][A-Z0-9-]{2,}\b`)
)

// Uppercased tokens that match the ticker shape but are almost always
// ordinary words in a market description.
var commonWords = map[string]struct{}{
	"THE":    {},
	"AND":    {},
	"FOR":    {},
	"THIS":   {},
	"WILL":   {},
	"NOT":    {},
	"YES":    {},
	"MARKET": {},
}

// TickerFromURL extracts a market ticker from a Kalshi URL.
//
// URL formats seen in the wild:
//   - https://kalshi.com/markets/kxindiaclimate/india-climate-goals/indiaclimate-30
//   - https://kalshi.com/markets/kxbtc/bitcoin-above-100k
//   - https://kalshi.com/events/kxindiaclimate/markets/indiaclimate-30
//
// The ticker is the last non-empty path segment. Returns "" if the URL
// does not parse or the segment does not look like a ticker.
func TickerFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	var last string
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			last = part
		}
	}
	if last == "" || !tickerSegment.MatchString(last) {
		return ""
	}
	return strings.ToUpper(last)
}

// TickerFromInput extracts a market ticker from free-form user input.
//
// Handles:
//   - Direct ticker: "INDIACLIMATE-30"
//   - URL: "https://kalshi.com/markets/.../indiaclimate-30"
//   - Description containing a ticker: "Check the INDIACLIMATE-30 market"
//
// Returns "" when no rule matches. Deterministic, no side effects.
func TickerFromInput(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if strings.HasPrefix(input, "http") {
		return TickerFromURL(input)
	}

	upper := strings.ToUpper(input)
	if tickerSegment.MatchString(upper) && len(input) <= 50 {
		return upper
	}

	// Kalshi tickers are uppercase with optional digits and hyphens.
	// Scan the text and skip tokens that are just common English words.
	for _, match := range tickerToken.FindAllString(upper, -1) {
		if _, skip := commonWords[match]; !skip {
			return match
		}
	}

	return ""
}
