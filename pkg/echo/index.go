package echo

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Index builds the phrase frequency table: for every window length n in
// [minWords, maxWords] and every start position, the n tokens are joined with
// single spaces and the window's span recorded against that phrase. Only
// phrases occurring at least twice are returned.
//
// Cost is O(len(tokens) * (maxWords-minWords+1)), bounded by text size and the
// configured span width, not by vocabulary size.
func Index(tokens []Token, minWords, maxWords int) (map[string]*EchoCandidate, error) {
	if minWords < 2 {
		return nil, &ConfigError{
			Reason:     fmt.Sprintf("min words must be at least 2, got %d", minWords),
			TokenCount: len(tokens),
		}
	}
	if maxWords < minWords {
		return nil, &ConfigError{
			Reason:     fmt.Sprintf("max words %d is below min words %d", maxWords, minWords),
			TokenCount: len(tokens),
		}
	}
	if maxWords > len(tokens) {
		return nil, &ConfigError{
			Reason:     fmt.Sprintf("max words %d exceeds token count %d", maxWords, len(tokens)),
			TokenCount: len(tokens),
		}
	}

	candidates := make(map[string]*EchoCandidate)
	var sb strings.Builder
	for n := minWords; n <= maxWords; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			window := tokens[i : i+n]
			sb.Reset()
			for w, tok := range window {
				if w > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(tok.Text)
			}
			phrase := sb.String()

			cand, ok := candidates[phrase]
			if !ok {
				texts := make([]string, n)
				for w, tok := range window {
					texts[w] = tok.Text
				}
				cand = &EchoCandidate{Phrase: phrase, Words: n, Tokens: texts}
				candidates[phrase] = cand
			}
			cand.Occurrences = append(cand.Occurrences, Occurrence{
				Start: window[0].Start,
				End:   window[n-1].End,
			})
		}
	}

	for phrase, cand := range candidates {
		if len(cand.Occurrences) < 2 {
			delete(candidates, phrase)
		}
	}
	log.Debugf("indexed %d multi-occurrence phrases across lengths %d-%d", len(candidates), minWords, maxWords)
	return candidates, nil
}
