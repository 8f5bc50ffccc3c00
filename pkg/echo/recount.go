package echo

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// RecountLive scans currentText for all non-overlapping occurrences of phrase,
// left to right, advancing past each match. The scan is a case-insensitive
// literal match, not a regex. It never consults the cached analysis; it exists
// so a displayed count can track edits that have not been re-analyzed yet.
//
// An empty phrase or a text without matches returns an empty slice, not an
// error: count zero is a normal state used to gray out a stale result row.
func RecountLive(currentText, phrase string) []Occurrence {
	if phrase == "" || currentText == "" {
		return []Occurrence{}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
		DFA:                  true,
	})
	ac := builder.Build([]string{phrase})

	matches := ac.FindAll(currentText)
	occurrences := make([]Occurrence, 0, len(matches))
	for _, m := range matches {
		occurrences = append(occurrences, Occurrence{Start: m.Start(), End: m.End()})
	}
	return occurrences
}
