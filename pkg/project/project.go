/*
Package project owns the persisted project document: the narrative text, the
phrase-length bounds, the custom whitelist, the preferred sort preset and the
last analysis results. The engine treats the bounds and whitelist stored here
as authoritative configuration inputs.

Projects are plain JSON files with a fixed schema; any echo result sequence
round-trips through it losslessly. Loading never mutates in-memory state: it
returns a fresh value or a PersistenceError, leaving the caller's project
untouched.
*/
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/fernicar/echoserve/pkg/echo"
)

// DefaultWhitelist is the abbreviation set new projects start with.
var DefaultWhitelist = []string{"Dr.", "Mr.", "Mrs.", "St.", "e.g.", "i.e."}

// Project is the persisted document, field names fixed by the on-disk schema.
type Project struct {
	Name         string            `json:"project_name" msgpack:"project_name"`
	OriginalText string            `json:"original_text" msgpack:"original_text"`
	MinWords     int               `json:"min_phrase_words" msgpack:"min_phrase_words"`
	MaxWords     int               `json:"max_phrase_words" msgpack:"max_phrase_words"`
	Whitelist    []string          `json:"custom_whitelist" msgpack:"custom_whitelist"`
	SortPreset   string            `json:"last_used_sort_preset" msgpack:"last_used_sort_preset"`
	EchoResults  []echo.EchoResult `json:"echo_results" msgpack:"echo_results"`
}

// PersistenceError wraps malformed or unreadable project data. Recoverable:
// the in-memory project the caller holds is never touched by a failed load.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("project %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// New returns a fresh unnamed project with the stock defaults.
func New() *Project {
	wl := make([]string, len(DefaultWhitelist))
	copy(wl, DefaultWhitelist)
	return &Project{
		Name:        "Unnamed Project",
		MinWords:    2,
		MaxWords:    8,
		Whitelist:   wl,
		SortPreset:  string(echo.MostRepeated),
		EchoResults: []echo.EchoResult{},
	}
}

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	if err := p.validate(); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	log.Debugf("loaded project %q from %s (%d cached echoes)", p.Name, path, len(p.EchoResults))
	return &p, nil
}

// Save writes the project as indented JSON and, on success, renames the
// project after the file stem the way the original document format expects.
func (p *Project) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p.Name = stem
	log.Debugf("saved project %q to %s", p.Name, path)
	return nil
}

// validate checks schema-level consistency of a loaded document.
func (p *Project) validate() error {
	if p.MinWords < 2 {
		return fmt.Errorf("min_phrase_words %d is below 2", p.MinWords)
	}
	if p.MaxWords < p.MinWords {
		return fmt.Errorf("max_phrase_words %d is below min_phrase_words %d", p.MaxWords, p.MinWords)
	}
	if p.SortPreset != "" && !echo.ValidPreset(p.SortPreset) {
		return fmt.Errorf("unknown sort preset %q", p.SortPreset)
	}
	for _, res := range p.EchoResults {
		if res.Count != len(res.Occurrences) {
			return fmt.Errorf("echo %q: count %d does not match %d occurrences",
				res.Phrase, res.Count, len(res.Occurrences))
		}
		if res.Count < 2 {
			return fmt.Errorf("echo %q: count %d is below 2", res.Phrase, res.Count)
		}
	}
	return nil
}

// AddWhitelist trims and inserts an entry, keeping the list sorted and
// duplicate-free. Empty or whitespace-only entries are a ValidationError and
// never reach the tokenizer.
func (p *Project) AddWhitelist(entry string) error {
	trimmed := strings.TrimSpace(entry)
	if trimmed == "" {
		return &echo.ValidationError{Entry: entry}
	}
	for _, existing := range p.Whitelist {
		if existing == trimmed {
			return nil
		}
	}
	p.Whitelist = append(p.Whitelist, trimmed)
	sort.Strings(p.Whitelist)
	return nil
}

// RemoveWhitelist drops an entry if present.
func (p *Project) RemoveWhitelist(entry string) {
	for i, existing := range p.Whitelist {
		if existing == entry {
			p.Whitelist = append(p.Whitelist[:i], p.Whitelist[i+1:]...)
			return
		}
	}
}

// SetResults replaces the cached result list wholesale.
func (p *Project) SetResults(results []echo.EchoResult) {
	out := make([]echo.EchoResult, len(results))
	copy(out, results)
	p.EchoResults = out
}

// Preset returns the stored sort preset, defaulting when unset.
func (p *Project) Preset() echo.SortPreset {
	if echo.ValidPreset(p.SortPreset) {
		return echo.SortPreset(p.SortPreset)
	}
	return echo.MostRepeated
}
