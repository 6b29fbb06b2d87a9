package similarity

import (
	"context"
	"math"
	"strings"

	"github.com/hupe1980/docmesh/core"
)

// componentFloor is the boundary below which either component similarity
// collapses the combined score (strict scheme).
const componentFloor = 0.4

// Matcher selects the best existing section of a document for a candidate
// (title, content) pair. It is pure with respect to the document and
// deterministic: repeated calls with the same inputs return the same result,
// and ties resolve to the first section in insertion order.
type Matcher struct {
	scorer *Scorer
}

// NewMatcher constructs a Matcher on top of the given scorer.
func NewMatcher(scorer *Scorer) *Matcher {
	return &Matcher{scorer: scorer}
}

// BestMatch returns the id of the section with the highest combined
// similarity to the candidate, plus that score. It returns ("", 0) when the
// document has no sections. Titles and contents are compared
// case-insensitively.
func (m *Matcher) BestMatch(ctx context.Context, doc *core.Document, title, content string) (string, float64) {
	if doc == nil || len(doc.Sections) == 0 {
		return "", 0.0
	}

	candTitle := strings.ToLower(title)
	candContent := strings.ToLower(content)

	bestID := ""
	bestScore := 0.0

	for _, id := range doc.SectionIDs() {
		section, ok := doc.Section(id)
		if !ok {
			continue
		}

		titleSim := m.scorer.Score(ctx, strings.ToLower(section.Title), candTitle)
		contentSim := m.scorer.Score(ctx, strings.ToLower(section.Content), candContent)
		combined := combineStrict(titleSim, contentSim)

		if combined > bestScore {
			bestScore = combined
			bestID = id
		}
	}

	return bestID, bestScore
}

// combineStrict implements the strict exponential weighting scheme. A low
// title or content component caps the result near zero; otherwise the title
// carries more signal than the content and the weighted sum is scaled
// superlinearly to push dissimilar pairs further down.
func combineStrict(titleSim, contentSim float64) float64 {
	if titleSim < componentFloor || contentSim < componentFloor {
		return math.Min(titleSim, contentSim) * 0.05
	}

	titleWeight := math.Pow(titleSim, 2)
	contentWeight := math.Pow(contentSim, 1.5)
	base := titleWeight*0.6 + contentWeight*0.4
	return math.Pow(base, 1.5)
}
