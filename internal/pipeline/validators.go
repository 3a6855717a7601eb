package pipeline

import (
	"fmt"
	"strings"
)

// PreconditionError signals that a stage's required upstream fields are
// missing or inconsistent. It is a gate failure, not an external fault:
// the stage makes no model call and the run usually continues.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// ValidateUserInput requires non-empty market input.
func ValidateUserInput(s *State) error {
	if strings.TrimSpace(s.UserMarketInput) == "" {
		return preconditionf("no market input provided; supply a Kalshi market URL, ticker, or description")
	}
	return nil
}

// ValidateMarketIngested requires a successfully identified market.
func ValidateMarketIngested(s *State) error {
	if s.InputValidationError != "" {
		return preconditionf("market input validation failed: %s", s.InputValidationError)
	}
	if s.MarketTitle == "" {
		return preconditionf("market title not extracted; cannot proceed without an identified market")
	}
	return nil
}

// ValidateMarketParsed requires resolution criteria and market odds.
func ValidateMarketParsed(s *State) error {
	if s.ResolutionCriteria == "" {
		return preconditionf("resolution criteria not extracted; cannot research without knowing what resolves the market")
	}
	if len(s.MarketOdds) == 0 {
		return preconditionf("market odds not extracted; cannot proceed without current pricing")
	}
	return nil
}

// ValidateResearchComplete requires a research summary with sources.
func ValidateResearchComplete(s *State) error {
	if s.ResearchSummary == "" {
		return preconditionf("research summary missing; cannot estimate probabilities without research")
	}
	if len(s.Sources) == 0 {
		return preconditionf("no sources provided; research must cite verifiable sources")
	}
	return nil
}

// ValidateProbabilitiesEstimated requires estimates that form a
// plausible probability distribution plus a confidence label. The sum
// check tolerates ±0.05 and runs only at this transition.
func ValidateProbabilitiesEstimated(s *State) error {
	if len(s.EstimatedProbabilities) == 0 {
		return preconditionf("no probability estimates; cannot analyze mispricing without estimates")
	}

	var total float64
	for _, p := range s.EstimatedProbabilities {
		total += p.EstimatedProbability
	}
	if total < 0.95 || total > 1.05 {
		return preconditionf("probability estimates sum to %.2f, should be ~1.0; revise estimates to form a valid distribution", total)
	}

	if s.ConfidenceLevel == "" {
		return preconditionf("confidence level not specified; must indicate low/medium/high confidence")
	}
	return nil
}

// ValidateMispricingAnalyzed requires the comparison table and an edge
// narrative.
func ValidateMispricingAnalyzed(s *State) error {
	if len(s.PricingComparison) == 0 {
		return preconditionf("pricing comparison missing; cannot make recommendations without mispricing analysis")
	}
	if s.EdgeAnalysis == "" {
		return preconditionf("edge analysis missing; must explain potential edges before recommendations")
	}
	return nil
}

// ValidateRecommendationsPresent requires at least one persona
// recommendation before scenario analysis.
func ValidateRecommendationsPresent(s *State) error {
	if len(s.PersonaRecommendations) == 0 {
		return preconditionf("no persona recommendations; cannot proceed to scenarios")
	}
	return nil
}

// ValidatePersonasCovered requires every requested persona to appear
// among the recommendations. Used only at the final gate.
func ValidatePersonasCovered(s *State, required []string) error {
	if len(s.PersonaRecommendations) == 0 {
		return preconditionf("no persona recommendations generated")
	}

	covered := make(map[string]bool, len(s.PersonaRecommendations))
	for _, rec := range s.PersonaRecommendations {
		covered[rec.Persona] = true
	}

	var missing []string
	for _, p := range required {
		if !covered[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return preconditionf("missing recommendations for personas: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateScenariosComplete requires the scenario set to contain
// exactly the three canonical types. Used only at the final gate.
func ValidateScenariosComplete(s *State) error {
	if len(s.Scenarios) == 0 {
		return preconditionf("no scenarios generated; must include best/worst/most-likely scenarios")
	}

	present := make(map[string]bool, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		present[sc.Type] = true
	}

	var missing []string
	for _, required := range []string{ScenarioBestCase, ScenarioWorstCase, ScenarioMostLikely} {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return preconditionf("missing scenario types: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateReadyForOutput runs every prerequisite for the final report
// in order, surfacing the first failure. The final stage treats this as
// advisory: a failure becomes a warning, never a block.
func ValidateReadyForOutput(s *State, requiredPersonas []string) error {
	checks := []func() error{
		func() error { return ValidateMarketIngested(s) },
		func() error { return ValidateMarketParsed(s) },
		func() error { return ValidateResearchComplete(s) },
		func() error { return ValidateProbabilitiesEstimated(s) },
		func() error { return ValidateMispricingAnalyzed(s) },
		func() error { return ValidatePersonasCovered(s, requiredPersonas) },
		func() error { return ValidateScenariosComplete(s) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
