/*
Package echo is the core engine, finding repeated multi-word phrases ("echoes")
in narrative text and reporting only the longest, non-redundant ones.

The pipeline has three stages run as one unit: tokenize with whitelist-aware
normalization, index every token n-gram between the configured word bounds,
then filter out phrases fully subsumed by a longer accepted echo. What survives
is sorted by one of two presets and cached until the next successful run.

# Pipeline

	engine := echo.NewEngine()
	res, err := engine.Analyze("the turtle started running ...", 2, 8, whitelist)

Analyze either fully succeeds, swapping the cached results and the input
snapshot in one step, or fails leaving both untouched. A partial result set is
never surfaced.

# Live updates

Two operations run outside the pipeline against the live text: RecountLive
scans the current (possibly edited) text for one phrase's occurrences without
touching the cache, and IsDirty compares the current inputs against the
snapshot of the last successful run. The Recounter type wraps RecountLive with
a coalescing window so rapid edit triggers collapse into a single scan.

# Offsets

All spans are half-open byte offsets into the original text. Tokens, candidates
and results are value objects scoped to one analysis call; the cached result
slice is replaced wholesale, never patched in place.
*/
package echo

// Token is one normalized unit of text with its span in the original input.
// Literal marks a whitelist-preserved unit whose casing and punctuation are
// kept verbatim; all other tokens are lowercased with punctuation stripped.
type Token struct {
	Text    string
	Start   int
	End     int
	Literal bool
}

// Occurrence is the span of one concrete instance of a phrase.
type Occurrence struct {
	Start int `json:"start" msgpack:"start"`
	End   int `json:"end" msgpack:"end"`
}

// Covers reports whether o fully contains the span of other.
func (o Occurrence) Covers(other Occurrence) bool {
	return o.Start <= other.Start && other.End <= o.End
}

// EchoCandidate is a distinct token n-gram seen at least twice, as produced by
// the indexer. Tokens holds the constituent token texts so the maximal-match
// filter can check containment on tokens rather than on the joined string.
type EchoCandidate struct {
	Phrase      string
	Words       int
	Tokens      []string
	Occurrences []Occurrence
}

// EchoResult is a candidate that survived maximal-match filtering. This is the
// externally visible entity; Count always equals len(Occurrences).
type EchoResult struct {
	Phrase      string       `json:"phrase" msgpack:"phrase"`
	Count       int          `json:"count" msgpack:"count"`
	Words       int          `json:"words" msgpack:"words"`
	Occurrences []Occurrence `json:"occurrences" msgpack:"occurrences"`
}

// SortPreset selects one of the two total orderings for results.
type SortPreset string

const (
	// LongestFirst orders by word count desc, then count desc, then phrase asc.
	LongestFirst SortPreset = "longest_first_by_word_count"
	// MostRepeated orders by count desc, then word count asc, then phrase asc.
	MostRepeated SortPreset = "most_repeated_short_to_long"
)

// ValidPreset reports whether s names a known sort preset.
func ValidPreset(s string) bool {
	switch SortPreset(s) {
	case LongestFirst, MostRepeated:
		return true
	}
	return false
}

// AnalysisResult is the outcome of one successful full pipeline run.
type AnalysisResult struct {
	Echoes []EchoResult
	// TokenCount is the number of tokens the text yielded, the upper bound a
	// caller should clamp its configured max words to.
	TokenCount int
}
