package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/docmesh/llm"
	"github.com/hupe1980/docmesh/logging"
)

// RunResult is the raw outcome of a single agent run.
type RunResult struct {
	// RunID correlates logs and downstream records for this run.
	RunID string
	// Agent is the role that produced the output.
	Agent AgentType
	// Output is the raw model text; structured agents emit a JSON object.
	Output string
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Configs overrides the built-in agent roster.
	Configs map[AgentType]AgentConfig
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner executes agent configs against a Completer. It holds no mutable
// state and is safe for concurrent use.
type Runner struct {
	completer llm.Completer
	configs   map[AgentType]AgentConfig
	logger    logging.Logger
}

// NewRunner constructs a Runner over the given completer.
func NewRunner(completer llm.Completer, optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{
		Configs: DefaultAgentConfigs(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{
		completer: completer,
		configs:   opts.Configs,
		logger:    opts.Logger,
	}
}

// Config returns the configuration registered for an agent type.
func (r *Runner) Config(agentType AgentType) (AgentConfig, bool) {
	cfg, ok := r.configs[agentType]
	return cfg, ok
}

// Run executes one agent with the given input and returns its raw output.
func (r *Runner) Run(ctx context.Context, agentType AgentType, input string) (RunResult, error) {
	cfg, ok := r.configs[agentType]
	if !ok {
		return RunResult{}, fmt.Errorf("unknown agent type: %s", agentType)
	}

	runID := uuid.NewString()
	start := time.Now()

	r.logger.Debug("research.run.start", "run_id", runID, "agent", string(agentType))

	resp, err := r.completer.Complete(ctx, llm.Request{
		Instructions: cfg.Instructions,
		Input:        input,
		ForceJSON:    cfg.StructuredOutput,
	})
	if err != nil {
		r.logger.Error("research.run.error", "run_id", runID, "agent", string(agentType), "error", err.Error())
		return RunResult{}, fmt.Errorf("agent %s run failed: %w", agentType, err)
	}

	r.logger.Info("research.run.success",
		"run_id", runID,
		"agent", string(agentType),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return RunResult{
		RunID:  runID,
		Agent:  agentType,
		Output: strings.TrimSpace(resp.Text),
	}, nil
}
