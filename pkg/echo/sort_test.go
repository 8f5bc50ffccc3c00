package echo

import (
	"reflect"
	"testing"
)

func resultSet() []EchoResult {
	return []EchoResult{
		{Phrase: "by the door", Count: 2, Words: 3},
		{Phrase: "and then", Count: 4, Words: 2},
		{Phrase: "all the way home", Count: 2, Words: 4},
		{Phrase: "at once", Count: 4, Words: 2},
		{Phrase: "over the hill", Count: 3, Words: 3},
	}
}

func phraseOrder(results []EchoResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Phrase
	}
	return out
}

func TestSortLongestFirst(t *testing.T) {
	results := resultSet()
	SortResults(results, LongestFirst)

	want := []string{
		"all the way home", // 4 words
		"over the hill",    // 3 words, count 3
		"by the door",      // 3 words, count 2
		"and then",         // 2 words, phrase tie-break
		"at once",
	}
	if got := phraseOrder(results); !reflect.DeepEqual(got, want) {
		t.Errorf("longest-first order = %v, want %v", got, want)
	}
}

func TestSortMostRepeated(t *testing.T) {
	results := resultSet()
	SortResults(results, MostRepeated)

	want := []string{
		"and then", // count 4, phrase tie-break
		"at once",
		"over the hill", // count 3
		"by the door",   // count 2, 3 words
		"all the way home",
	}
	if got := phraseOrder(results); !reflect.DeepEqual(got, want) {
		t.Errorf("most-repeated order = %v, want %v", got, want)
	}
}

func TestSortTotality(t *testing.T) {
	for _, preset := range []SortPreset{LongestFirst, MostRepeated} {
		results := resultSet()
		SortResults(results, preset)
		for i := 1; i < len(results); i++ {
			a, b := results[i-1], results[i]
			if a.Phrase == b.Phrase {
				t.Errorf("%s: duplicate phrase %q breaks totality", preset, a.Phrase)
			}
			if a.Words == b.Words && a.Count == b.Count && a.Phrase > b.Phrase {
				t.Errorf("%s: phrase tie-break not applied between %q and %q", preset, a.Phrase, b.Phrase)
			}
		}
	}
}

func TestSortedLeavesInputUntouched(t *testing.T) {
	results := resultSet()
	original := phraseOrder(results)
	Sorted(results, LongestFirst)
	if got := phraseOrder(results); !reflect.DeepEqual(got, original) {
		t.Errorf("Sorted mutated its input: %v", got)
	}
}

func TestValidPreset(t *testing.T) {
	if !ValidPreset(string(LongestFirst)) || !ValidPreset(string(MostRepeated)) {
		t.Error("known presets rejected")
	}
	if ValidPreset("alphabetical") || ValidPreset("") {
		t.Error("unknown preset accepted")
	}
}
