package pipeline

import (
	"context"
	"errors"
	"fmt"

	"edgescout/internal/kalshi"
	"edgescout/internal/perception"
	"go.uber.org/zap"
)

// DefaultPersonas are the participant archetypes recommendations are
// produced for when the caller does not choose its own set.
var DefaultPersonas = []string{
	"risk_averse",
	"risk_seeking",
	"news_driven",
	"macro_thinker",
	"casual_participant",
	"data_analyst",
}

// Gateway fetches market data. *kalshi.Client satisfies it; tests
// substitute fakes.
type Gateway interface {
	FetchMarket(ctx context.Context, ticker string) (*kalshi.Market, error)
}

// Pipeline orchestrates the research run: eight stages, strictly in
// order, one model call each.
type Pipeline struct {
	llm      perception.LLMClient
	gateway  Gateway
	personas []string
	logger   *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPersonas overrides the default persona set for stages that
// produce per-persona output.
func WithPersonas(personas []string) Option {
	return func(p *Pipeline) {
		if len(personas) > 0 {
			p.personas = personas
		}
	}
}

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a fully wired pipeline.
func New(llm perception.LLMClient, gateway Gateway, opts ...Option) *Pipeline {
	p := &Pipeline{
		llm:      llm,
		gateway:  gateway,
		personas: DefaultPersonas,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Personas returns the persona set this pipeline recommends for.
func (p *Pipeline) Personas() []string {
	return p.personas
}

// Run executes the full pipeline on the given market input and returns
// the final state. No fault crosses this boundary: every failure is
// recorded in the state's issue log or its input-error field.
//
// Abort policy:
//   - an input-identification error after stage 1 terminates the run;
//   - a hard failure (precondition or fault) in a critical stage
//     (stages 1–2) terminates the run;
//   - any other failure is recorded and the run continues with the
//     state as last known. Warnings never trigger an abort.
func (p *Pipeline) Run(ctx context.Context, input string) *State {
	s := NewState(input)
	logger := p.logger.With(zap.String("run_id", s.RunID))
	logger.Info("research pipeline starting")

	aborted := false
	for _, st := range p.stages() {
		s.CurrentStage = st.name
		stageLog := logger.With(zap.String("stage", string(st.name)))
		stageLog.Info("stage running")

		err := p.execStage(ctx, st, s)
		var pre *PreconditionError
		switch {
		case err == nil:
			if st.name == StageIngestor && s.InputValidationError != "" {
				stageLog.Warn("input validation failed", zap.String("cause", s.InputValidationError))
				aborted = true
			}
		case errors.As(err, &pre):
			if st.name == StageIngestor {
				// Addressable by the user; kept out of the generic log.
				s.InputValidationError = pre.Message
				aborted = true
			} else {
				s.AddError(st.name, pre.Message)
				aborted = st.critical
			}
			stageLog.Warn("precondition not met", zap.String("cause", pre.Message))
		default:
			s.AddError(st.name, fmt.Sprintf("stage %s failed: %v", st.name, err))
			stageLog.Error("stage failed", zap.Error(err))
			aborted = st.critical
		}

		if aborted {
			stageLog.Error("aborting run")
			break
		}
		stageLog.Info("stage complete")
	}

	if !aborted {
		s.CurrentStage = StageCompleted
	}
	logger.Info("pipeline finished",
		zap.String("final_stage", string(s.CurrentStage)),
		zap.Int("errors", len(s.Errors())),
		zap.Int("warnings", len(s.Warnings())))
	return s
}

// RunStage executes a single named stage against an existing state.
func (p *Pipeline) RunStage(ctx context.Context, s *State, name Stage) error {
	for _, st := range p.stages() {
		if st.name == name {
			s.CurrentStage = st.name
			return p.execStage(ctx, st, s)
		}
	}
	return fmt.Errorf("unknown stage %q", name)
}

// execStage runs one stage through the uniform pattern: gate first (no
// model call on a failed gate), then the stage body. Panics are
// converted to errors so nothing escapes the orchestrator.
func (p *Pipeline) execStage(ctx context.Context, st stageDescriptor, s *State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal fault: %v", r)
		}
	}()

	if st.validate != nil {
		if verr := st.validate(s); verr != nil {
			return verr
		}
	}
	return st.run(ctx, p, s)
}
