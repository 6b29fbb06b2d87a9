package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/docmesh/logging"
)

// expanderOutput is the structured response of the query expander agent.
type expanderOutput struct {
	RelatedQueries []string `json:"related_queries"`
}

// QueryExpanderOptions configures a QueryExpander.
type QueryExpanderOptions struct {
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// QueryExpander broadens a search query into related queries via the query
// expander agent. Expansion is best effort: any failure degrades to the
// original query so the pipeline always has something to research.
type QueryExpander struct {
	runner *Runner
	logger logging.Logger
}

// NewQueryExpander constructs a QueryExpander over the given runner.
func NewQueryExpander(runner *Runner, optFns ...func(o *QueryExpanderOptions)) *QueryExpander {
	opts := QueryExpanderOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &QueryExpander{runner: runner, logger: opts.Logger}
}

// Expand returns related search queries for the given query. On any failure
// (transport, malformed or empty output) it returns the original query as the
// sole element; Expand never fails.
func (e *QueryExpander) Expand(ctx context.Context, query string) []string {
	result, err := e.runner.Run(ctx, QueryExpanderAgent, query)
	if err != nil {
		e.logger.Warn("research.expand.fallback", "query", query, "error", err.Error())
		return []string{query}
	}

	var out expanderOutput
	if err := decodeObject(result.Output, &out); err != nil || len(out.RelatedQueries) == 0 {
		e.logger.Warn("research.expand.fallback", "query", query, "run_id", result.RunID)
		return []string{query}
	}

	return out.RelatedQueries
}

// decodeObject parses the first JSON object found in the model output,
// tolerating surrounding prose and markdown code fences.
func decodeObject(text string, v any) error {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
