package kalshi

import "math"

// Odds is the implied probability of one outcome.
type Odds struct {
	Outcome            string
	ImpliedProbability float64
	Price              float64
}

// ImpliedOdds derives Yes/No implied probabilities from quoted prices.
//
// Fallback order, applied exactly:
//  1. With a yes-ask quote, implied-yes is the yes bid/ask midpoint;
//     otherwise it is the last-trade price.
//  2. Implied-no mirrors using the no bid/ask; with no no-ask quote it
//     is 1 minus the last-trade price when one exists, else 0.
//  3. If the implied-yes rounds to exactly zero while a last-trade
//     price exists, the last trade overrides both sides.
//
// This ordering resolves illiquid markets where bid/ask are absent.
// Both probabilities are rounded to 4 decimal places.
func (m *Market) ImpliedOdds() []Odds {
	yes := m.LastPrice
	if m.YesAsk != 0 {
		yes = (m.YesBid + m.YesAsk) / 2
	}

	var no float64
	switch {
	case m.NoAsk != 0:
		no = (m.NoBid + m.NoAsk) / 2
	case m.LastPrice != 0:
		no = 1 - m.LastPrice
	}

	yes = round4(yes)
	no = round4(no)

	if yes == 0 && m.LastPrice != 0 {
		yes = round4(m.LastPrice)
		no = round4(1 - m.LastPrice)
	}

	return []Odds{
		{Outcome: "Yes", ImpliedProbability: yes, Price: yes},
		{Outcome: "No", ImpliedProbability: no, Price: no},
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
