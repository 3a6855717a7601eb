package kalshi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedOdds_MidpointWhenQuoted(t *testing.T) {
	m := &Market{YesBid: 0.60, YesAsk: 0.64, NoBid: 0.36, NoAsk: 0.40, LastPrice: 0.55}

	odds := m.ImpliedOdds()
	require.Len(t, odds, 2)

	want := []Odds{
		{Outcome: "Yes", ImpliedProbability: 0.62, Price: 0.62},
		{Outcome: "No", ImpliedProbability: 0.38, Price: 0.38},
	}
	if diff := cmp.Diff(want, odds); diff != "" {
		t.Errorf("odds mismatch (-want +got):\n%s", diff)
	}
}

func TestImpliedOdds_LastTradeFallback(t *testing.T) {
	// No ask quotes at all: last trade drives both sides.
	m := &Market{LastPrice: 0.30}

	odds := m.ImpliedOdds()
	assert.Equal(t, 0.30, odds[0].ImpliedProbability)
	assert.Equal(t, 0.70, odds[1].ImpliedProbability)
}

func TestImpliedOdds_ZeroMidpointOverride(t *testing.T) {
	// A yes ask is quoted but the midpoint rounds to zero, while a
	// nonzero last trade exists: the last trade overrides both sides.
	m := &Market{YesBid: 0, YesAsk: 0.00004, NoBid: 0.9, NoAsk: 0.95, LastPrice: 0.25}

	odds := m.ImpliedOdds()
	assert.Equal(t, 0.25, odds[0].ImpliedProbability)
	assert.Equal(t, 0.75, odds[1].ImpliedProbability)
}

func TestImpliedOdds_AllZero(t *testing.T) {
	m := &Market{}

	odds := m.ImpliedOdds()
	assert.Equal(t, 0.0, odds[0].ImpliedProbability)
	assert.Equal(t, 0.0, odds[1].ImpliedProbability)
}

func TestImpliedOdds_Rounding(t *testing.T) {
	m := &Market{YesBid: 0.33333, YesAsk: 0.33334, NoBid: 0.66666, NoAsk: 0.66667}

	odds := m.ImpliedOdds()
	assert.Equal(t, 0.3333, odds[0].ImpliedProbability)
	assert.Equal(t, 0.6667, odds[1].ImpliedProbability)
}
