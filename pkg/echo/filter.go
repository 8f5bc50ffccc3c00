package echo

import (
	"sort"

	"github.com/charmbracelet/log"
)

// FilterMaximal keeps only candidates not redundant with a longer accepted
// echo. Candidates are processed longest first (ties: count desc, phrase asc)
// because acceptance decisions depend on longer phrases being decided first.
//
// A candidate P is discarded iff some already-accepted Q with strictly more
// words contains P's token sequence as a contiguous run AND every occurrence
// of P lies inside an occurrence of Q. Containment is checked on tokens, not
// on the joined string, so "the cat" is never treated as part of
// "the category"; the per-occurrence check keeps a phrase alive when it also
// recurs somewhere the longer echo does not reach.
//
// The returned set is unsorted; ordering is the sorter's job.
func FilterMaximal(candidates map[string]*EchoCandidate) []EchoResult {
	ordered := make([]*EchoCandidate, 0, len(candidates))
	for _, cand := range candidates {
		ordered = append(ordered, cand)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Words != b.Words {
			return a.Words > b.Words
		}
		if len(a.Occurrences) != len(b.Occurrences) {
			return len(a.Occurrences) > len(b.Occurrences)
		}
		return a.Phrase < b.Phrase
	})

	var accepted []*EchoCandidate
	for _, cand := range ordered {
		if subsumed(cand, accepted) {
			continue
		}
		accepted = append(accepted, cand)
	}

	results := make([]EchoResult, len(accepted))
	for i, cand := range accepted {
		occs := make([]Occurrence, len(cand.Occurrences))
		copy(occs, cand.Occurrences)
		results[i] = EchoResult{
			Phrase:      cand.Phrase,
			Count:       len(occs),
			Words:       cand.Words,
			Occurrences: occs,
		}
	}
	log.Debugf("maximal-match filter kept %d of %d candidates", len(results), len(candidates))
	return results
}

// subsumed reports whether some strictly longer accepted echo covers cand.
func subsumed(cand *EchoCandidate, accepted []*EchoCandidate) bool {
	for _, longer := range accepted {
		if longer.Words <= cand.Words {
			continue
		}
		if !containsTokenRun(longer.Tokens, cand.Tokens) {
			continue
		}
		if allCovered(cand.Occurrences, longer.Occurrences) {
			return true
		}
	}
	return false
}

// containsTokenRun reports whether needle appears as a contiguous subsequence
// of haystack.
func containsTokenRun(haystack, needle []string) bool {
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// allCovered reports whether every occurrence in occs lies inside some
// occurrence in covers. Both slices are sorted ascending by start.
func allCovered(occs, covers []Occurrence) bool {
	for _, o := range occs {
		found := false
		for _, q := range covers {
			if q.Start > o.Start {
				break
			}
			if q.Covers(o) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
