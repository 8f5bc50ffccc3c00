package echo

import "sort"

// SortResults orders results in place by the given preset. Pure reordering,
// no recomputation; both presets are total orders because the phrase is a
// unique key within one result set. Unknown presets fall back to MostRepeated.
func SortResults(results []EchoResult, preset SortPreset) {
	switch preset {
	case LongestFirst:
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i], results[j]
			if a.Words != b.Words {
				return a.Words > b.Words
			}
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.Phrase < b.Phrase
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i], results[j]
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			if a.Words != b.Words {
				return a.Words < b.Words
			}
			return a.Phrase < b.Phrase
		})
	}
}

// Sorted returns a sorted copy, leaving the input untouched.
func Sorted(results []EchoResult, preset SortPreset) []EchoResult {
	out := make([]EchoResult, len(results))
	copy(out, results)
	SortResults(out, preset)
	return out
}
