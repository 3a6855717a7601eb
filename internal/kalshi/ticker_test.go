package kalshi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickerFromURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"nested market path", "https://kalshi.com/markets/kxindiaclimate/india-climate-goals/indiaclimate-30", "INDIACLIMATE-30"},
		{"event path", "https://kalshi.com/events/kxindiaclimate/markets/indiaclimate-30", "INDIACLIMATE-30"},
		{"short path", "https://kalshi.com/markets/kxbtc/bitcoin-above-100k", "BITCOIN-ABOVE-100K"},
		{"trailing slash", "https://kalshi.com/markets/kxbtc/", "KXBTC"},
		{"no path", "https://kalshi.com", ""},
		{"segment with invalid chars", "https://kalshi.com/markets/foo%20bar!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TickerFromURL(tc.url))
		})
	}
}

func TestTickerFromInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"direct ticker", "INDIACLIMATE-30", "INDIACLIMATE-30"},
		{"lowercase ticker", "kxbtc-24dec31-100k", "KXBTC-24DEC31-100K"},
		{"ticker in prose", "Check the INDIACLIMATE-30 market", "INDIACLIMATE-30"},
		{"url", "https://kalshi.com/markets/kxbtc/btc-100k", "BTC-100K"},
		{"common words skipped", "Will the market say YES", ""},
		{"acronym in question", "Will BTC exceed $100K by end of 2024?", "BTC"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TickerFromInput(tc.input))
		})
	}
}

func TestTickerFromInput_MalformedReturnsEmpty(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"\t\n",
		"the and for this will not yes",
		"???",
		"a b c",
	} {
		assert.Empty(t, TickerFromInput(input), "input %q", input)
	}
}

// Extraction is idempotent for syntactically valid tickers: extracting
// from an extracted ticker yields the same ticker.
func TestTickerFromInput_Idempotent(t *testing.T) {
	for _, input := range []string{
		"KXBTC-24DEC31-100K",
		"indiaclimate-30",
		"Is INDIACLIMATE-30 going to resolve yes?",
		"https://kalshi.com/markets/kxbtc/bitcoin-above-100k",
	} {
		once := TickerFromInput(input)
		if once == "" {
			continue
		}
		assert.Equal(t, once, TickerFromInput(once), "input %q", input)
	}
}

func TestTickerFromInput_LengthCap(t *testing.T) {
	long := strings.Repeat("A", 60)
	// Longer than 50 chars is not a direct ticker, but the token
	// scanner may still find it; the direct-match rule must not fire.
	got := TickerFromInput(long + " and nothing else")
	assert.Equal(t, long, got) // token rule catches it
	assert.Equal(t, long, TickerFromInput(got))
}
