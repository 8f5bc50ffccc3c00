package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fernicar/echoserve/pkg/echo"
)

func sampleProject() *Project {
	p := New()
	p.OriginalText = "the cat sat and the cat sat again"
	p.MinWords = 2
	p.MaxWords = 4
	p.SortPreset = string(echo.LongestFirst)
	p.EchoResults = []echo.EchoResult{
		{
			Phrase: "the cat sat",
			Count:  2,
			Words:  3,
			Occurrences: []echo.Occurrence{
				{Start: 0, End: 11},
				{Start: 16, End: 27},
			},
		},
	}
	return p
}

func TestProjectRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novel.json")

	saved := sampleProject()
	if err := saved.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Name != "novel" {
		t.Errorf("save did not rename project after file stem, got %q", saved.Name)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("round trip changed the document:\nsaved  %+v\nloaded %+v", saved, loaded)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(malformed, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	badBounds := filepath.Join(dir, "bounds.json")
	if err := os.WriteFile(badBounds, []byte(`{"project_name":"x","min_phrase_words":1,"max_phrase_words":4}`), 0644); err != nil {
		t.Fatal(err)
	}

	badCount := filepath.Join(dir, "count.json")
	if err := os.WriteFile(badCount, []byte(`{
		"project_name": "x", "min_phrase_words": 2, "max_phrase_words": 4,
		"echo_results": [{"phrase": "a b", "count": 3, "words": 2,
			"occurrences": [{"start": 0, "end": 3}]}]
	}`), 0644); err != nil {
		t.Fatal(err)
	}

	badPreset := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(badPreset, []byte(`{"project_name":"x","min_phrase_words":2,"max_phrase_words":4,"last_used_sort_preset":"random"}`), 0644); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		path        string
		description string
	}{
		{filepath.Join(dir, "missing.json"), "Nonexistent file"},
		{malformed, "Malformed JSON"},
		{badBounds, "Min bound below 2"},
		{badCount, "Count does not match occurrences"},
		{badPreset, "Unknown sort preset"},
	}

	for _, tc := range testCases {
		_, err := Load(tc.path)
		var persistErr *PersistenceError
		if !errors.As(err, &persistErr) {
			t.Errorf("%s: got %v, want PersistenceError", tc.description, err)
		}
	}
}

func TestLoadLeavesCallerStateAlone(t *testing.T) {
	current := sampleProject()
	before := *current

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected load error")
	}
	if current.Name != before.Name || current.OriginalText != before.OriginalText {
		t.Error("failed load touched the in-memory project")
	}
}

func TestWhitelistOperations(t *testing.T) {
	p := New()

	if err := p.AddWhitelist("  Prof.  "); err != nil {
		t.Fatalf("add: %v", err)
	}
	found := false
	for _, entry := range p.Whitelist {
		if entry == "Prof." {
			found = true
		}
		if entry != "" && entry[0] == ' ' {
			t.Errorf("entry %q not trimmed", entry)
		}
	}
	if !found {
		t.Fatalf("added entry missing from %v", p.Whitelist)
	}

	size := len(p.Whitelist)
	if err := p.AddWhitelist("Prof."); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}
	if len(p.Whitelist) != size {
		t.Errorf("duplicate add grew the whitelist to %d", len(p.Whitelist))
	}

	var validationErr *echo.ValidationError
	if err := p.AddWhitelist("   "); !errors.As(err, &validationErr) {
		t.Errorf("blank entry: got %v, want ValidationError", err)
	}

	p.RemoveWhitelist("Prof.")
	for _, entry := range p.Whitelist {
		if entry == "Prof." {
			t.Error("removed entry still present")
		}
	}
	// Removing something absent is a no-op.
	p.RemoveWhitelist("Nope.")
}

func TestWhitelistStaysSorted(t *testing.T) {
	p := &Project{}
	for _, entry := range []string{"St.", "Dr.", "Mr."} {
		if err := p.AddWhitelist(entry); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"Dr.", "Mr.", "St."}
	if !reflect.DeepEqual(p.Whitelist, want) {
		t.Errorf("whitelist = %v, want %v", p.Whitelist, want)
	}
}

func TestNewDefaults(t *testing.T) {
	p := New()
	if p.Name != "Unnamed Project" {
		t.Errorf("name = %q", p.Name)
	}
	if p.MinWords != 2 || p.MaxWords != 8 {
		t.Errorf("bounds = %d..%d, want 2..8", p.MinWords, p.MaxWords)
	}
	if p.Preset() != echo.MostRepeated {
		t.Errorf("preset = %v", p.Preset())
	}
	if !reflect.DeepEqual(p.Whitelist, DefaultWhitelist) {
		t.Errorf("whitelist = %v", p.Whitelist)
	}

	// The default list in a fresh project is a copy, not an alias.
	p.Whitelist[0] = "changed"
	if DefaultWhitelist[0] == "changed" {
		t.Fatal("fresh project aliases DefaultWhitelist")
	}
}

func TestSetResultsCopies(t *testing.T) {
	p := New()
	source := []echo.EchoResult{{Phrase: "a b", Count: 2, Words: 2}}
	p.SetResults(source)
	source[0].Phrase = "mutated"
	if p.EchoResults[0].Phrase != "a b" {
		t.Error("SetResults kept a reference to the caller's slice")
	}
}

func TestPresetFallback(t *testing.T) {
	p := &Project{SortPreset: "nonsense"}
	if p.Preset() != echo.MostRepeated {
		t.Errorf("unknown preset should fall back, got %v", p.Preset())
	}
	p.SortPreset = string(echo.LongestFirst)
	if p.Preset() != echo.LongestFirst {
		t.Errorf("stored preset ignored, got %v", p.Preset())
	}
}
