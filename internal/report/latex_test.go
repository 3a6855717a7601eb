package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"edgescout/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"ampersand", "P&L", `P\&L`},
		{"percent", "60% chance", `60\% chance`},
		{"dollar and hash", "$100K #1", `\$100K \#1`},
		{"underscore", "risk_averse", `risk\_averse`},
		{"braces", "{a}", `\{a\}`},
		{"tilde", "~5%", `\textasciitilde{}5\%`},
		{"caret", "2^10", `2\textasciicircum{}10`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.in))
		})
	}
}

func TestEscapeLaTeX_BackslashFirst(t *testing.T) {
	// The backslash replacement runs before the brace replacements, so
	// the braces it introduces get escaped while the backslashes added
	// by later rules do not.
	assert.Equal(t, `\textbackslash\{\}`, EscapeLaTeX(`\`))
	assert.Equal(t, `a \& b`, EscapeLaTeX("a & b"))
}

func fullState() *pipeline.State {
	s := pipeline.NewState("KXBTC-24DEC31-100K")
	s.MarketTitle = "Bitcoin above $100K?"
	s.MarketRef = "KXBTC-24DEC31-100K"
	s.ResolutionCriteria = "Resolves Yes if BTC > $100,000."
	s.ExpirationDate = "2024-12-31T23:59:00Z"
	s.MarketOdds = []pipeline.MarketOdds{
		{Outcome: "Yes", ImpliedProbability: 0.62, CurrentPrice: 0.62},
		{Outcome: "No", ImpliedProbability: 0.38, CurrentPrice: 0.38},
	}
	s.ResearchSummary = "Flows & fundamentals favor upside."
	s.Sources = []string{"on-chain data", "ETF filings"}
	s.EstimatedProbabilities = []pipeline.ProbabilityEstimate{
		{Outcome: "Yes", EstimatedProbability: 0.7, Reasoning: "momentum"},
		{Outcome: "No", EstimatedProbability: 0.3, Reasoning: "residual"},
	}
	s.ConfidenceLevel = "medium"
	s.EdgeAnalysis = "Yes looks ~8 points underpriced."
	s.PersonaRecommendations = []pipeline.PersonaRecommendation{
		{Persona: "risk_averse", SuggestedPosition: "Stay out",
			Rationale: strings.Repeat("x", 120), KeyRisks: []string{"volatility"}},
	}
	s.Scenarios = []pipeline.Scenario{
		{Type: pipeline.ScenarioBestCase, Description: "breakout", ProbabilityShift: "+15%", KeyTriggers: []string{"ETF inflows"}},
		{Type: pipeline.ScenarioWorstCase, Description: "crash", ProbabilityShift: "-30%", KeyTriggers: []string{"exchange failure"}},
		{Type: pipeline.ScenarioMostLikely, Description: "grind", ProbabilityShift: "+5%", KeyTriggers: []string{"steady flows"}},
	}
	s.FinalOutput = "# Market Research Report\n\nYes is underpriced."
	return s
}

func TestLaTeX_FullDocument(t *testing.T) {
	restore := now
	now = func() time.Time { return time.Date(2024, time.November, 5, 12, 0, 0, 0, time.UTC) }
	defer func() { now = restore }()

	doc := LaTeX(fullState())

	assert.True(t, strings.HasPrefix(doc, `\documentclass[11pt,a4paper]{article}`))
	assert.Contains(t, doc, `\begin{document}`)
	assert.Contains(t, doc, `\end{document}`)
	assert.Contains(t, doc, "Generated on November 5, 2024")

	// Title block escapes the market title.
	assert.Contains(t, doc, `Bitcoin above \$100K?`)
	assert.Contains(t, doc, `\texttt{KXBTC-24DEC31-100K}`)

	// Pricing table: percentages to one decimal.
	assert.Contains(t, doc, `\textcolor{bullgreen}{Yes} & 62.0\% & 70.0\%`)
	assert.Contains(t, doc, `\textcolor{bearred}{No} & 38.0\% & 30.0\%`)
	assert.Contains(t, doc, `\textbf{Confidence Level:} Medium`)

	// Persona table: identifier turned into words, rationale truncated.
	assert.Contains(t, doc, "Risk Averse & Stay out")
	assert.Contains(t, doc, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, doc, strings.Repeat("x", 101))

	// Scenario subsections.
	assert.Contains(t, doc, `\subsection*{Best Case}`)
	assert.Contains(t, doc, `\subsection*{Worst Case}`)
	assert.Contains(t, doc, `\subsection*{Most Likely}`)
	assert.Contains(t, doc, `\item ETF inflows`)

	// Research section escapes special characters.
	assert.Contains(t, doc, `Flows \& fundamentals favor upside.`)
	assert.Contains(t, doc, `\textasciitilde{}8 points underpriced`)

	assert.Contains(t, doc, `\section*{Disclaimer}`)
}

func TestLaTeX_EmptyStateDefaults(t *testing.T) {
	doc := LaTeX(pipeline.NewState("x"))

	assert.Contains(t, doc, "Unknown Market")
	assert.Contains(t, doc, `\texttt{N/A}`)
	assert.Contains(t, doc, "Not specified")
	assert.Contains(t, doc, "N/A\\%")
	assert.Contains(t, doc, "No edge analysis available.")
	assert.Contains(t, doc, "No research summary available.")
}

func TestSaveLaTeX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tex")
	require.NoError(t, SaveLaTeX(fullState(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `\end{document}`)
}
