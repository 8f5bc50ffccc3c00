package echo

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Tokenizer splits raw text into position-tagged tokens. Whitelist entries are
// held in a patricia trie so the longest literal wins at every scan position
// without regex backtracking.
type Tokenizer struct {
	trie     *patricia.Trie
	maxEntry int
	entries  int
}

// NewTokenizer builds a tokenizer for the given whitelist. Empty or
// whitespace-only entries are rejected with a ValidationError.
func NewTokenizer(whitelist []string) (*Tokenizer, error) {
	t := &Tokenizer{trie: patricia.NewTrie()}
	for _, entry := range whitelist {
		if strings.TrimSpace(entry) == "" {
			return nil, &ValidationError{Entry: entry}
		}
		if t.trie.Insert(patricia.Prefix(entry), true) {
			t.entries++
			if len(entry) > t.maxEntry {
				t.maxEntry = len(entry)
			}
		}
	}
	return t, nil
}

// Tokenize scans text into an ordered token sequence. Start/End are exact
// byte offsets into the untouched input; no character is double-counted or
// skipped except punctuation between tokens. Empty text or text yielding zero
// tokens is an InputError.
func (t *Tokenizer) Tokenize(text string) ([]Token, error) {
	if text == "" {
		return nil, &InputError{Reason: "text is empty"}
	}

	var tokens []Token
	i := 0
	for i < len(text) {
		if n := t.literalAt(text, i); n > 0 {
			tokens = append(tokens, Token{
				Text:    text[i : i+n],
				Start:   i,
				End:     i + n,
				Literal: true,
			})
			i += n
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		if !isWordRune(r) {
			i += size
			continue
		}

		start := i
		end := i
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !isWordRune(r) && r != '\'' && r != '-' {
				break
			}
			end += size
		}
		// Internal apostrophes and hyphens stay, trailing ones are punctuation.
		for end > start {
			last := text[end-1]
			if last != '\'' && last != '-' {
				break
			}
			end--
		}
		tokens = append(tokens, Token{
			Text:  strings.ToLower(text[start:end]),
			Start: start,
			End:   end,
		})
		i = end
	}

	if len(tokens) == 0 {
		return nil, &InputError{Reason: "no processable words found in text"}
	}
	log.Debugf("tokenized %d bytes into %d tokens (%d whitelist entries)", len(text), len(tokens), t.entries)
	return tokens, nil
}

// literalAt returns the byte length of the longest whitelist entry matching at
// position i, or 0. A literal only fires at a word boundary: it must not start
// mid-word, and when it ends in a word character the next character must not
// be one, so entry "Mr" never fires inside "Mrs".
func (t *Tokenizer) literalAt(text string, i int) int {
	if t.entries == 0 {
		return 0
	}
	if i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:i])
		if isWordRune(prev) {
			return 0
		}
	}

	limit := i + t.maxEntry
	if limit > len(text) {
		limit = len(text)
	}

	longest := 0
	t.trie.VisitPrefixes(patricia.Prefix(text[i:limit]), func(prefix patricia.Prefix, item patricia.Item) error {
		if len(prefix) > longest && t.boundaryAfter(text, i+len(prefix)) {
			longest = len(prefix)
		}
		return nil
	})
	return longest
}

// boundaryAfter checks the trailing word boundary for a literal ending at end.
func (t *Tokenizer) boundaryAfter(text string, end int) bool {
	last, _ := utf8.DecodeLastRuneInString(text[:end])
	if !isWordRune(last) {
		// Entries ending in punctuation ("Dr.") carry their own boundary.
		return true
	}
	if end >= len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize is a convenience wrapper building a throwaway Tokenizer.
func Tokenize(text string, whitelist []string) ([]Token, error) {
	t, err := NewTokenizer(whitelist)
	if err != nil {
		return nil, err
	}
	return t.Tokenize(text)
}
