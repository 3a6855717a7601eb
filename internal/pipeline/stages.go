package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"edgescout/internal/articulation"
	"edgescout/internal/kalshi"
)

// stageDescriptor is one row of the pipeline table. The orchestrator
// drives every stage through the same validate→call→parse→write
// executor; stages differ only in their gate, their model exchange,
// and which fields they own.
type stageDescriptor struct {
	name Stage

	// critical marks stages whose hard failure aborts the run: the
	// first two stages establish facts every later stage depends on.
	critical bool

	// validate gates the stage; nil means no blocking gate (the final
	// stage checks prerequisites advisorily inside run instead).
	validate func(*State) error

	run func(ctx context.Context, p *Pipeline, s *State) error
}

func (p *Pipeline) stages() []stageDescriptor {
	return []stageDescriptor{
		{name: StageIngestor, critical: true, validate: ValidateUserInput, run: runIngestor},
		{name: StageParser, critical: true, validate: ValidateMarketIngested, run: runParser},
		{name: StageResearcher, validate: ValidateMarketParsed, run: runResearcher},
		{name: StageEstimator, validate: ValidateResearchComplete, run: runEstimator},
		{name: StageMispricing, validate: ValidateProbabilitiesEstimated, run: runMispricing},
		{name: StageRecommender, validate: ValidateMispricingAnalyzed, run: runRecommender},
		{name: StageScenarioAnalyst, validate: ValidateRecommendationsPresent, run: runScenarios},
		{name: StageFinalSuggester, run: runSuggester},
	}
}

// Per-stage result schemas. Structural mismatches in a model response
// surface as parse errors instead of silently defaulted values.

type ingestorResult struct {
	ValidationStatus  string `json:"validation_status"`
	MarketTitle       string `json:"market_title"`
	MarketRef         string `json:"market_url_or_id"`
	ValidationMessage string `json:"validation_message"`
}

type parserResult struct {
	ResolutionCriteria string       `json:"resolution_criteria"`
	ExpirationDate     string       `json:"expiration_date"`
	MarketOdds         []MarketOdds `json:"market_odds"`
}

type researchResult struct {
	ResearchSummary string   `json:"research_summary"`
	Sources         []string `json:"sources"`
}

type estimateResult struct {
	EstimatedProbabilities []ProbabilityEstimate `json:"estimated_probabilities"`
	ConfidenceLevel        string                `json:"confidence_level"`
}

type mispricingResult struct {
	PricingComparison []PricingComparison `json:"pricing_comparison"`
	EdgeAnalysis      string              `json:"edge_analysis"`
}

type recommenderResult struct {
	PersonaRecommendations []PersonaRecommendation `json:"persona_recommendations"`
}

type scenarioResult struct {
	Scenarios []Scenario `json:"scenarios"`
}

type suggesterResult struct {
	FinalOutput string `json:"final_output"`
}

// runIngestor identifies the market from the raw user input.
// Writes: MarketTitle, MarketRef, InputValidationError.
func runIngestor(ctx context.Context, p *Pipeline, s *State) error {
	msg := fmt.Sprintf("Analyze this Kalshi market input:\n\n%s\n\nReturn your analysis as JSON.", s.UserMarketInput)

	response, err := p.llm.CompleteWithSystem(ctx, ingestorPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result ingestorResult
	if err := articulation.Decode(response, &result); err != nil {
		// Identification is user-facing: a response we cannot parse is
		// an addressable condition, not an internal pipeline fault.
		s.InputValidationError = fmt.Sprintf("failed to parse market identification: %v", err)
		return nil
	}

	switch result.ValidationStatus {
	case "valid":
		s.MarketTitle = result.MarketTitle
		s.MarketRef = result.MarketRef
	case "needs_clarification":
		s.InputValidationError = messageOr(result.ValidationMessage, "clarification needed")
	default:
		s.InputValidationError = messageOr(result.ValidationMessage, "invalid market input")
	}
	return nil
}

// runParser extracts market mechanics, preferring live Kalshi data and
// falling back to a best-effort model extraction when the gateway
// fails. Writes: ResolutionCriteria, ExpirationDate, MarketOdds.
func runParser(ctx context.Context, p *Pipeline, s *State) error {
	ticker := kalshi.TickerFromInput(s.UserMarketInput)
	if ticker == "" && s.MarketRef != "" {
		ticker = kalshi.TickerFromInput(s.MarketRef)
	}

	if ticker != "" {
		market, err := p.gateway.FetchMarket(ctx, ticker)
		if err == nil {
			s.ResolutionCriteria = market.ResolutionCriteria()
			s.ExpirationDate = market.ExpirationTime
			if market.Title != "" {
				s.MarketTitle = market.Title
			}
			for _, o := range market.ImpliedOdds() {
				s.MarketOdds = append(s.MarketOdds, MarketOdds{
					Outcome:            o.Outcome,
					ImpliedProbability: o.ImpliedProbability,
					CurrentPrice:       o.Price,
				})
			}
			return nil
		}
		// Recoverable either way: not-found and transport failures both
		// fall back to model-based extraction.
		s.AddError(StageParser, fmt.Sprintf("kalshi API: %v", err))
	}

	msg := fmt.Sprintf(`Parse this Kalshi market:

Market Title: %s
Market Reference: %s
Original Input: %s

Note: live data could not be fetched from the Kalshi API. Extract what
you can from the input and clearly mark any unknown fields.
Return your analysis as JSON.`, s.MarketTitle, s.MarketRef, s.UserMarketInput)

	response, err := p.llm.CompleteWithSystem(ctx, parserPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result parserResult
	if err := articulation.Decode(response, &result); err != nil {
		s.AddError(StageParser, fmt.Sprintf("failed to parse market mechanics: %v", err))
		return nil
	}

	s.ResolutionCriteria = result.ResolutionCriteria
	s.ExpirationDate = result.ExpirationDate
	s.MarketOdds = result.MarketOdds
	return nil
}

// runResearcher gathers independent research. The instruction payload
// deliberately excludes all price fields: the independence of the
// research from market pricing is the analytical point of the
// pipeline. Writes: ResearchSummary, Sources.
func runResearcher(ctx context.Context, p *Pipeline, s *State) error {
	msg := fmt.Sprintf(`Conduct independent research on this prediction market:

Market: %s
Resolution Criteria: %s
Expiration: %s

Research the factors that could affect this outcome.
DO NOT reference any market prices in your research.
Return your findings as JSON.`, s.MarketTitle, s.ResolutionCriteria, s.ExpirationDate)

	response, err := p.llm.CompleteWithSystem(ctx, researcherPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result researchResult
	if err := articulation.Decode(response, &result); err != nil {
		s.AddError(StageResearcher, fmt.Sprintf("failed to parse research: %v", err))
		return nil
	}

	s.ResearchSummary = result.ResearchSummary
	s.Sources = result.Sources
	return nil
}

// runEstimator forms independent probability estimates from the
// research. Outcome names come from the parsed odds, but no prices are
// included. Writes: EstimatedProbabilities, ConfidenceLevel.
func runEstimator(ctx context.Context, p *Pipeline, s *State) error {
	outcomes := make([]string, 0, len(s.MarketOdds))
	for _, o := range s.MarketOdds {
		outcomes = append(outcomes, o.Outcome)
	}
	if len(outcomes) == 0 {
		outcomes = []string{"Yes", "No"}
	}

	msg := fmt.Sprintf(`Based on this research, estimate probabilities for the market outcomes.

Market: %s
Resolution Criteria: %s

Possible Outcomes: %s

Research Summary:
%s

Sources consulted: %s

DO NOT look at or reference any market prices.
Form your probability estimates based ONLY on the research above.
Return your estimates as JSON.`,
		s.MarketTitle, s.ResolutionCriteria, strings.Join(outcomes, ", "),
		s.ResearchSummary, strings.Join(s.Sources, ", "))

	response, err := p.llm.CompleteWithSystem(ctx, estimatorPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result estimateResult
	if err := articulation.Decode(response, &result); err != nil {
		s.AddError(StageEstimator, fmt.Sprintf("failed to parse probability estimates: %v", err))
		return nil
	}

	s.EstimatedProbabilities = result.EstimatedProbabilities
	s.ConfidenceLevel = result.ConfidenceLevel
	return nil
}

// runMispricing compares the independent estimates against market
// pricing. Writes: PricingComparison, EdgeAnalysis.
func runMispricing(ctx context.Context, p *Pipeline, s *State) error {
	msg := fmt.Sprintf(`Compare these probability estimates to market pricing:

Market: %s
Confidence Level: %s

Your Independent Estimates:
%s

Current Market Pricing:
%s

Analyze where mispricing might exist.
Return your analysis as JSON.`,
		s.MarketTitle, s.ConfidenceLevel,
		mustJSON(s.EstimatedProbabilities), mustJSON(s.MarketOdds))

	response, err := p.llm.CompleteWithSystem(ctx, mispricingPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result mispricingResult
	if err := articulation.Decode(response, &result); err != nil {
		s.AddError(StageMispricing, fmt.Sprintf("failed to parse mispricing analysis: %v", err))
		return nil
	}

	s.PricingComparison = result.PricingComparison
	s.EdgeAnalysis = result.EdgeAnalysis
	return nil
}

// runRecommender produces per-persona suggestions.
// Writes: PersonaRecommendations.
func runRecommender(ctx context.Context, p *Pipeline, s *State) error {
	msg := fmt.Sprintf(`Generate persona-specific suggestions for this market analysis:

Market: %s

Pricing Comparison:
%s

Edge Analysis:
%s

Generate suggestions for these personas: %s

Return your suggestions as JSON.`,
		s.MarketTitle, mustJSON(s.PricingComparison), s.EdgeAnalysis,
		strings.Join(p.personas, ", "))

	response, err := p.llm.CompleteWithSystem(ctx, recommenderPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result recommenderResult
	if err := articulation.Decode(response, &result); err != nil {
		s.AddError(StageRecommender, fmt.Sprintf("failed to parse persona recommendations: %v", err))
		return nil
	}

	s.PersonaRecommendations = result.PersonaRecommendations
	return nil
}

// runScenarios stress-tests the thesis with best/worst/most-likely
// scenarios. Writes: Scenarios.
func runScenarios(ctx context.Context, p *Pipeline, s *State) error {
	msg := fmt.Sprintf(`Generate scenario analysis for this market:

Market: %s
Resolution: %s
Expiration: %s

Current Analysis:
%s

Pricing Comparison:
%s

Generate best-case, worst-case, and most-likely scenarios.
Return your analysis as JSON.`,
		s.MarketTitle, s.ResolutionCriteria, s.ExpirationDate,
		s.EdgeAnalysis, mustJSON(s.PricingComparison))

	response, err := p.llm.CompleteWithSystem(ctx, scenarioPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result scenarioResult
	if err := articulation.Decode(response, &result); err != nil {
		s.AddError(StageScenarioAnalyst, fmt.Sprintf("failed to parse scenario analysis: %v", err))
		return nil
	}

	s.Scenarios = result.Scenarios
	return nil
}

// runSuggester synthesizes the final report. Prerequisites are checked
// advisorily: a failed composite check becomes a warning and synthesis
// proceeds with whatever state is available. Writes: FinalOutput.
func runSuggester(ctx context.Context, p *Pipeline, s *State) error {
	if err := ValidateReadyForOutput(s, p.personas); err != nil {
		s.AddWarning(StageFinalSuggester, fmt.Sprintf("output prerequisites not fully met: %v", err))
	}

	msg := fmt.Sprintf(`Synthesize this analysis into a final research report:

## Market Information
- Title: %s
- Reference: %s
- Resolution: %s
- Expiration: %s

## Current Market Pricing
%s

## Independent Research
%s

Sources: %s

## Probability Estimates
%s
Confidence: %s

## Mispricing Analysis
%s

Edge Analysis: %s

## Persona Recommendations
%s

## Scenarios
%s

Generate the final report as JSON with a 'final_output' field containing markdown.`,
		s.MarketTitle, s.MarketRef, s.ResolutionCriteria, s.ExpirationDate,
		mustJSON(s.MarketOdds),
		s.ResearchSummary, strings.Join(s.Sources, ", "),
		mustJSON(s.EstimatedProbabilities), s.ConfidenceLevel,
		mustJSON(s.PricingComparison), s.EdgeAnalysis,
		mustJSON(s.PersonaRecommendations),
		mustJSON(s.Scenarios))

	response, err := p.llm.CompleteWithSystem(ctx, suggesterPrompt, msg)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	var result suggesterResult
	if err := articulation.Decode(response, &result); err == nil && result.FinalOutput != "" {
		s.FinalOutput = result.FinalOutput
		return nil
	}

	// Some models answer with the markdown directly; accept it.
	if strings.HasPrefix(strings.TrimSpace(response), "#") {
		s.FinalOutput = response
		return nil
	}

	s.AddError(StageFinalSuggester, "failed to generate final report")
	return nil
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

// mustJSON renders v for inclusion in an instruction payload. Stage
// result types marshal without error; anything else is a programming
// mistake surfaced as a placeholder rather than a panic.
func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
