package server

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/fernicar/echoserve/pkg/config"
	"github.com/fernicar/echoserve/pkg/echo"
	"github.com/fernicar/echoserve/pkg/project"
)

const turtleText = "The turtle started running and then it smiled and then " +
	"the turtle started running and then it smiled, while at the same " +
	"the turtle started running and then it crouched down."

// runServer feeds the encoded requests through a server instance and returns
// a decoder over everything it wrote back.
func runServer(t *testing.T, requests ...Request) *msgpack.Decoder {
	t.Helper()

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	var out bytes.Buffer
	srv := NewServerIO(echo.NewEngine(), config.DefaultConfig(), &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("server: %v", err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatalf("decode ready frame: %v", err)
	}
	if ready.Status != "ready" {
		t.Fatalf("first frame status = %q, want ready", ready.Status)
	}
	return dec
}

func TestServerAnalyze(t *testing.T) {
	dec := runServer(t, Request{ID: "a1", Command: "analyze", Text: turtleText, MinWords: 2, MaxWords: 8})

	var resp AnalyzeResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "a1" {
		t.Errorf("id = %q", resp.ID)
	}
	if resp.Count != 3 || len(resp.Echoes) != 3 {
		t.Fatalf("got %d echoes, want 3: %+v", resp.Count, resp.Echoes)
	}
	if resp.Tokens != 31 {
		t.Errorf("token count = %d, want 31", resp.Tokens)
	}
	for _, row := range resp.Echoes {
		if row.Count != len(row.Occurrences) {
			t.Errorf("%q: count %d != %d occurrences", row.Phrase, row.Count, len(row.Occurrences))
		}
	}
}

func TestServerAnalyzeDefaultsBounds(t *testing.T) {
	// Bounds left at zero take the configured engine defaults (2..8).
	dec := runServer(t, Request{ID: "a2", Command: "analyze", Text: turtleText})

	var resp AnalyzeResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("got %d echoes, want 3", resp.Count)
	}
}

func TestServerErrorFrames(t *testing.T) {
	testCases := []struct {
		request     Request
		wantCode    int
		description string
	}{
		{Request{ID: "e1", Command: "analyze"}, CodeBadRequest, "Missing text"},
		{Request{ID: "e2", Command: "analyze", Text: "hi", MinWords: 5, MaxWords: 8}, CodeBadRequest, "Fewer tokens than min"},
		{Request{ID: "e3", Command: "analyze", Text: "one two three", MinWords: 2, MaxWords: 500}, CodeBadConfig, "Max beyond token count"},
		{Request{ID: "e4", Command: "analyze", Text: "some text", Whitelist: []string{" "}}, CodeBadRequest, "Blank whitelist entry"},
		{Request{ID: "e5", Command: "sort", Preset: "bogus"}, CodeBadRequest, "Unknown preset"},
		{Request{ID: "e6", Command: "project_load", Path: "/nonexistent/p.json"}, CodeNotFound, "Missing project file"},
		{Request{ID: "e7", Command: "explode"}, CodeBadRequest, "Unknown command"},
	}

	for _, tc := range testCases {
		dec := runServer(t, tc.request)
		var frame ErrorFrame
		if err := dec.Decode(&frame); err != nil {
			t.Errorf("%s: decode: %v", tc.description, err)
			continue
		}
		if frame.ID != tc.request.ID {
			t.Errorf("%s: id = %q, want %q", tc.description, frame.ID, tc.request.ID)
		}
		if frame.Code != tc.wantCode {
			t.Errorf("%s: code = %d (%s), want %d", tc.description, frame.Code, frame.Error, tc.wantCode)
		}
	}
}

func TestServerRecountAndDirty(t *testing.T) {
	dec := runServer(t,
		Request{ID: "r1", Command: "recount", Text: "the cat and the cat", Phrase: "the cat"},
		Request{ID: "r2", Command: "recount", Text: "no match here", Phrase: "the cat"},
		Request{ID: "d1", Command: "dirty", Text: "whatever", MinWords: 2, MaxWords: 4},
	)

	var rc RecountResponse
	if err := dec.Decode(&rc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rc.Count != 2 || len(rc.Occurrences) != 2 {
		t.Errorf("recount = %d occurrences %v, want 2", rc.Count, rc.Occurrences)
	}

	if err := dec.Decode(&rc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rc.ID != "r2" || rc.Count != 0 {
		t.Errorf("zero-match recount: id=%q count=%d", rc.ID, rc.Count)
	}

	var dirty DirtyResponse
	if err := dec.Decode(&dirty); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !dirty.Dirty {
		t.Error("fresh engine should report dirty")
	}
}

func TestServerSortAfterAnalyze(t *testing.T) {
	dec := runServer(t,
		Request{ID: "a1", Command: "analyze", Text: turtleText, MinWords: 2, MaxWords: 8},
		Request{ID: "s1", Command: "sort", Preset: string(echo.LongestFirst)},
	)

	var analyzed, sorted AnalyzeResponse
	if err := dec.Decode(&analyzed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := dec.Decode(&sorted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sorted.Count != analyzed.Count {
		t.Errorf("sort changed the result count: %d != %d", sorted.Count, analyzed.Count)
	}
	if sorted.Echoes[0].Phrase != "the turtle started running and then it smiled" {
		t.Errorf("longest-first head = %q", sorted.Echoes[0].Phrase)
	}
}

func TestServerMaxWords(t *testing.T) {
	dec := runServer(t, Request{ID: "m1", Command: "maxwords", Text: "one two three four"})

	var resp MaxWordsResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tokens != 4 {
		t.Errorf("tokens = %d, want 4", resp.Tokens)
	}
}

func TestServerProjectRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novel.json")

	doc := project.New()
	doc.OriginalText = "the cat and the cat"
	dec := runServer(t,
		Request{ID: "p1", Command: "project_save", Path: path, Project: doc},
		Request{ID: "p2", Command: "project_load", Path: path},
	)

	var savedResp ProjectResponse
	if err := dec.Decode(&savedResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if savedResp.Status != "saved" {
		t.Errorf("save status = %q", savedResp.Status)
	}

	var loadedResp ProjectResponse
	if err := dec.Decode(&loadedResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loadedResp.Status != "loaded" || loadedResp.Project == nil {
		t.Fatalf("load response = %+v", loadedResp)
	}
	if loadedResp.Project.OriginalText != doc.OriginalText {
		t.Errorf("text did not round-trip: %q", loadedResp.Project.OriginalText)
	}
	if loadedResp.Project.Name != "novel" {
		t.Errorf("name = %q, want file stem", loadedResp.Project.Name)
	}
}

func TestServerHealth(t *testing.T) {
	dec := runServer(t, Request{ID: "h1", Command: "health"})

	var resp StatusResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "h1" || resp.Status != "ok" {
		t.Errorf("health = %+v", resp)
	}
}
