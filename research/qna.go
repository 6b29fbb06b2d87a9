package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/docmesh/logging"
)

// QnaItem is a single question/answer pair produced by the qna agent.
type QnaItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// qnaOutput is the structured response of the qna agent.
type qnaOutput struct {
	QnaPairs []QnaItem `json:"qna_pairs"`
}

// QnaEngineOptions configures a QnaEngine.
type QnaEngineOptions struct {
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// QnaEngine generates question/answer pairs covering a set of queries via the
// qna agent. Generation is best effort: any failure degrades to an empty
// list; Generate never fails.
type QnaEngine struct {
	runner *Runner
	logger logging.Logger
}

// NewQnaEngine constructs a QnaEngine over the given runner.
func NewQnaEngine(runner *Runner, optFns ...func(o *QnaEngineOptions)) *QnaEngine {
	opts := QnaEngineOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &QnaEngine{runner: runner, logger: opts.Logger}
}

// Generate returns question/answer pairs for the given queries, or an empty
// slice on any failure.
func (e *QnaEngine) Generate(ctx context.Context, queries []string) []QnaItem {
	if len(queries) == 0 {
		return nil
	}

	result, err := e.runner.Run(ctx, QnaAgent, formatQueries(queries))
	if err != nil {
		e.logger.Warn("research.qna.fallback", "error", err.Error())
		return nil
	}

	var out qnaOutput
	if err := decodeObject(result.Output, &out); err != nil {
		e.logger.Warn("research.qna.fallback", "run_id", result.RunID)
		return nil
	}

	return out.QnaPairs
}

// formatQueries numbers the queries one per line, "1] query" style.
func formatQueries(queries []string) string {
	lines := make([]string, 0, len(queries))
	for i, q := range queries {
		lines = append(lines, fmt.Sprintf("%d] %s", i+1, q))
	}
	return strings.Join(lines, "\n")
}
