package echo

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Engine runs the full pipeline and owns the cached result set plus the
// snapshot of the inputs it was produced from. The cache is replaced wholesale
// under one lock; values handed out are copies, so callers never observe a
// partially swapped state.
type Engine struct {
	mu       sync.RWMutex
	results  []EchoResult
	snapshot *Snapshot
	preset   SortPreset

	// generation stamps analysis requests so a superseded in-flight run can
	// be discarded on arrival instead of clobbering a newer result.
	generation atomic.Uint64
}

// NewEngine returns an engine with no cached analysis and the MostRepeated
// ordering.
func NewEngine() *Engine {
	return &Engine{preset: MostRepeated}
}

// SetPreset changes the ordering applied to Analyze output and Results.
// Unknown strings are ignored.
func (e *Engine) SetPreset(preset SortPreset) {
	if !ValidPreset(string(preset)) {
		log.Warnf("ignoring unknown sort preset %q", preset)
		return
	}
	e.mu.Lock()
	e.preset = preset
	SortResults(e.results, preset)
	e.mu.Unlock()
}

// Preset returns the current ordering.
func (e *Engine) Preset() SortPreset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.preset
}

// Analyze runs tokenizer, indexer and maximal-match filter as one unit and,
// on success, swaps the cached results and the input snapshot atomically.
// On any error the previous cache and snapshot are left intact; a partial
// result set is never surfaced.
func (e *Engine) Analyze(text string, minWords, maxWords int, whitelist []string) (*AnalysisResult, error) {
	gen := e.generation.Add(1)
	res, err := e.run(text, minWords, maxWords, whitelist)
	if err != nil {
		return nil, err
	}
	if !e.publish(gen, res, text, minWords, maxWords, whitelist) {
		log.Debugf("analysis generation %d superseded, discarding", gen)
	}
	return res, nil
}

// AnalyzeAsync runs Analyze off the calling goroutine and delivers to done.
// Only the last-issued request's results are ever delivered: if a newer
// request was started before this one finished, neither the cache swap nor the
// callback happens for the stale run.
func (e *Engine) AnalyzeAsync(text string, minWords, maxWords int, whitelist []string, done func(*AnalysisResult, error)) {
	gen := e.generation.Add(1)
	go func() {
		start := time.Now()
		res, err := e.run(text, minWords, maxWords, whitelist)
		if err != nil {
			if gen == e.generation.Load() {
				done(nil, err)
			}
			return
		}
		if !e.publish(gen, res, text, minWords, maxWords, whitelist) {
			return
		}
		log.Debugf("analysis took %v, %d echoes", time.Since(start), len(res.Echoes))
		done(res, nil)
	}()
}

// run executes the pipeline without touching the cache.
func (e *Engine) run(text string, minWords, maxWords int, whitelist []string) (*AnalysisResult, error) {
	tokenizer, err := NewTokenizer(whitelist)
	if err != nil {
		return nil, err
	}
	tokens, err := tokenizer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) < minWords {
		return nil, &InputError{Reason: "not enough words to find echoes"}
	}

	candidates, err := Index(tokens, minWords, maxWords)
	if err != nil {
		return nil, err
	}
	results := FilterMaximal(candidates)
	SortResults(results, e.Preset())

	return &AnalysisResult{Echoes: results, TokenCount: len(tokens)}, nil
}

// publish swaps cache and snapshot if gen is still the latest request.
func (e *Engine) publish(gen uint64, res *AnalysisResult, text string, minWords, maxWords int, whitelist []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation.Load() {
		return false
	}
	snap := NewSnapshot(text, minWords, maxWords, whitelist)
	e.results = res.Echoes
	e.snapshot = &snap
	return true
}

// Results returns a copy of the cached result set in the current ordering.
func (e *Engine) Results() []EchoResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]EchoResult, len(e.results))
	copy(out, e.results)
	return out
}

// Sort reorders the cached results by preset and returns a copy. No
// occurrences are recomputed.
func (e *Engine) Sort(preset SortPreset) []EchoResult {
	e.SetPreset(preset)
	return e.Results()
}

// IsDirty reports whether the given inputs differ from those of the last
// successful analysis. With no analysis yet, everything is dirty.
func (e *Engine) IsDirty(text string, minWords, maxWords int, whitelist []string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snapshot == nil {
		return true
	}
	return !e.snapshot.Matches(text, minWords, maxWords, whitelist)
}

// MaxPhraseLength returns the text's token count under the given whitelist,
// the highest word bound a caller can configure. Unanalyzable text counts as
// zero.
func (e *Engine) MaxPhraseLength(text string, whitelist []string) int {
	clean := make([]string, 0, len(whitelist))
	for _, entry := range whitelist {
		if strings.TrimSpace(entry) != "" {
			clean = append(clean, entry)
		}
	}
	tokens, err := Tokenize(text, clean)
	if err != nil {
		return 0
	}
	return len(tokens)
}
