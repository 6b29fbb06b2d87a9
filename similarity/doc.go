// Package similarity implements lexical similarity scoring between text
// fragments and best-match section selection over a document.
//
// The Scorer baseline is a longest-matching-blocks sequence ratio blended
// with a token-set overlap measure; an optional semantic Comparator can be
// delegated to, with the lexical baseline as fallback. Scoring never fails:
// any delegate error degrades to the local computation.
//
// The Matcher combines per-section title and content similarities with the
// strict exponential weighting scheme: whenever either component falls below
// 0.4 the combined score collapses towards zero, and above that boundary
// title similarity is squared (weight 0.6) and content similarity raised to
// 1.5 (weight 0.4), with the weighted sum raised to 1.5 again. The scheme
// deliberately trades duplicate sections for a low false-positive merge rate,
// since a wrong merge overwrites user-visible content while a duplicate is
// recoverable.
package similarity
