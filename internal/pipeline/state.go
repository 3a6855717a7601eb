// Package pipeline implements the research pipeline: a single state
// record threaded through eight ordered stages, each gated by a
// precondition validator and backed by exactly one model call.
package pipeline

import (
	"github.com/google/uuid"
)

// Stage names one pipeline step. Stage values double as the state
// machine's states, bracketed by StageNotStarted and StageCompleted.
type Stage string

const (
	StageNotStarted      Stage = "not_started"
	StageIngestor        Stage = "market_ingestor"
	StageParser          Stage = "market_parser"
	StageResearcher      Stage = "independent_researcher"
	StageEstimator       Stage = "probability_estimator"
	StageMispricing      Stage = "mispricing_analyst"
	StageRecommender     Stage = "persona_recommender"
	StageScenarioAnalyst Stage = "scenario_analyst"
	StageFinalSuggester  Stage = "final_suggester"
	StageCompleted       Stage = "completed"
)

// Severity classifies an issue. Warnings never influence abort
// decisions; errors from critical stages do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one entry in the append-only run log.
type Issue struct {
	Stage    Stage    `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// MarketOdds is the market-implied probability of one outcome.
type MarketOdds struct {
	Outcome            string  `json:"outcome"`
	ImpliedProbability float64 `json:"implied_probability"`
	CurrentPrice       float64 `json:"current_price"`
}

// ProbabilityEstimate is an independently estimated probability.
type ProbabilityEstimate struct {
	Outcome              string  `json:"outcome"`
	EstimatedProbability float64 `json:"estimated_probability"`
	Reasoning            string  `json:"reasoning"`
}

// PricingComparison contrasts an estimate with market pricing.
type PricingComparison struct {
	Outcome              string  `json:"outcome"`
	MarketProbability    float64 `json:"market_probability"`
	EstimatedProbability float64 `json:"estimated_probability"`
	Difference           float64 `json:"difference"`
	Assessment           string  `json:"assessment"` // overpriced, underpriced, fairly_priced
}

// PersonaRecommendation is a suggestion tailored to one persona.
type PersonaRecommendation struct {
	Persona           string   `json:"persona"`
	SuggestedPosition string   `json:"suggested_position"`
	Rationale         string   `json:"rationale"`
	KeyRisks          []string `json:"key_risks"`
}

// Canonical scenario types. A complete scenario analysis carries
// exactly these three.
const (
	ScenarioBestCase   = "best_case"
	ScenarioWorstCase  = "worst_case"
	ScenarioMostLikely = "most_likely"
)

// Scenario is one stress-test of the thesis.
type Scenario struct {
	Type             string   `json:"type"`
	Description      string   `json:"description"`
	ProbabilityShift string   `json:"probability_shift"`
	KeyTriggers      []string `json:"key_triggers"`
}

// State is the single mutable record threaded through every stage.
// Fields are additive: once a stage writes a field no later stage
// clears it. The orchestrator owns the state exclusively for the
// duration of one run; nothing is shared across runs.
type State struct {
	RunID string `json:"run_id"`

	// Initial input
	UserMarketInput string `json:"user_market_input"`

	// Market identification (ingestor)
	MarketTitle          string `json:"market_title,omitempty"`
	MarketRef            string `json:"market_url_or_id,omitempty"`
	InputValidationError string `json:"input_validation_error,omitempty"`

	// Market mechanics (parser)
	ResolutionCriteria string       `json:"resolution_criteria,omitempty"`
	ExpirationDate     string       `json:"expiration_date,omitempty"`
	MarketOdds         []MarketOdds `json:"market_odds,omitempty"`

	// Research (researcher)
	ResearchSummary string   `json:"research_summary,omitempty"`
	Sources         []string `json:"sources,omitempty"`

	// Probability estimates (estimator)
	EstimatedProbabilities []ProbabilityEstimate `json:"estimated_probabilities,omitempty"`
	ConfidenceLevel        string                `json:"confidence_level,omitempty"` // low, medium, high

	// Mispricing analysis (analyst)
	PricingComparison []PricingComparison `json:"pricing_comparison,omitempty"`
	EdgeAnalysis      string              `json:"edge_analysis,omitempty"`

	// Persona recommendations (recommender)
	PersonaRecommendations []PersonaRecommendation `json:"persona_recommendations,omitempty"`

	// Scenarios (scenario analyst)
	Scenarios []Scenario `json:"scenarios,omitempty"`

	// Final output (suggester)
	FinalOutput string `json:"final_output,omitempty"`

	// Run metadata
	CurrentStage Stage   `json:"current_stage"`
	Issues       []Issue `json:"issues,omitempty"`
}

// NewState creates a fresh state for one run.
func NewState(input string) *State {
	return &State{
		RunID:           uuid.NewString(),
		UserMarketInput: input,
		CurrentStage:    StageNotStarted,
	}
}

// AddError appends a hard error to the run log.
func (s *State) AddError(stage Stage, message string) {
	s.Issues = append(s.Issues, Issue{Stage: stage, Severity: SeverityError, Message: message})
}

// AddWarning appends a non-blocking warning to the run log.
func (s *State) AddWarning(stage Stage, message string) {
	s.Issues = append(s.Issues, Issue{Stage: stage, Severity: SeverityWarning, Message: message})
}

// Errors returns the messages of all hard errors, in order.
func (s *State) Errors() []string {
	return s.messages(SeverityError)
}

// Warnings returns the messages of all warnings, in order.
func (s *State) Warnings() []string {
	return s.messages(SeverityWarning)
}

func (s *State) messages(sev Severity) []string {
	var out []string
	for _, issue := range s.Issues {
		if issue.Severity == sev {
			out = append(out, issue.Message)
		}
	}
	return out
}

// HasErrors reports whether any hard error has been recorded.
func (s *State) HasErrors() bool {
	for _, issue := range s.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
