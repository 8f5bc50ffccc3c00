package echo

// Snapshot records the exact inputs of the last successful analysis. It is
// used purely for equality comparison and never mutated after capture.
type Snapshot struct {
	Text      string
	MinWords  int
	MaxWords  int
	whitelist map[string]struct{}
}

// NewSnapshot captures the given inputs. The whitelist is held as a set, so
// comparison is order-independent.
func NewSnapshot(text string, minWords, maxWords int, whitelist []string) Snapshot {
	set := make(map[string]struct{}, len(whitelist))
	for _, entry := range whitelist {
		set[entry] = struct{}{}
	}
	return Snapshot{
		Text:      text,
		MinWords:  minWords,
		MaxWords:  maxWords,
		whitelist: set,
	}
}

// Matches reports whether the snapshot was taken against exactly these inputs:
// exact text equality, exact bounds, set-equality of the whitelist.
func (s Snapshot) Matches(text string, minWords, maxWords int, whitelist []string) bool {
	if s.Text != text || s.MinWords != minWords || s.MaxWords != maxWords {
		return false
	}
	seen := make(map[string]struct{}, len(whitelist))
	for _, entry := range whitelist {
		seen[entry] = struct{}{}
	}
	if len(seen) != len(s.whitelist) {
		return false
	}
	for entry := range seen {
		if _, ok := s.whitelist[entry]; !ok {
			return false
		}
	}
	return true
}
