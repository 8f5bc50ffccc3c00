/*
Package server implements msgpack IPC for the echo detection engine.

The server package provides a minimal interface for phrase-echo analysis using
msgpack serialization over stdin/stdout. It is the message-passing replacement
for a GUI toolkit's signal/slot layer: the frontend sends structured requests
and receives plain value responses, never sharing state with the engine.

# IPC

The server operates on a request response model where clients send structured
messages via stdin and receive responses through stdout. Each message contains
an ID field, a command, and other fields based on the operation type.

Analysis requests use mainly this structure:

	{"id": "req_001", "cmd": "analyze", "text": "...", "min": 2, "max": 8, "wl": ["Dr.", "Mr."]}

The server responds with the maximal echoes in the configured ordering:

	{"id": "req_001", "echoes": [{"phrase": "the turtle", "count": 3, "words": 2, "occ": [...]}], "c": 1, "tokens": 31, "t": 2}

Live operations run against the current (possibly edited) text without
touching the cached analysis:

	{"id": "live_001", "cmd": "recount", "text": "...", "phrase": "the turtle"}
	{"id": "live_002", "cmd": "dirty", "text": "...", "min": 2, "max": 8, "wl": [...]}
	{"id": "live_003", "cmd": "maxwords", "text": "..."}

Project documents round-trip through the same channel:

	{"id": "prj_001", "cmd": "project_load", "path": "novel.json"}
	{"id": "prj_002", "cmd": "project_save", "path": "novel.json", "project": {...}}

Error frames carry the failure class so the frontend can decide between
disabling the action (bad input), clamping and retrying (bad bounds), or
reporting (everything else):

	{"id": "req_001", "e": "config: max words 40 exceeds token count 31", "c": 422}

A ready frame is emitted once on startup; EOF on stdin is a clean shutdown.
Coalescing of rapid recount triggers is the caller's job; the server executes
every request it receives, synchronously, in arrival order.
*/
package server

import (
	"github.com/fernicar/echoserve/pkg/echo"
	"github.com/fernicar/echoserve/pkg/project"
)

// Request is the single incoming message shape; Command selects the fields
// that matter.
type Request struct {
	ID        string           `msgpack:"id"`
	Command   string           `msgpack:"cmd"`
	Text      string           `msgpack:"text,omitempty"`
	Phrase    string           `msgpack:"phrase,omitempty"`
	MinWords  int              `msgpack:"min,omitempty"`
	MaxWords  int              `msgpack:"max,omitempty"`
	Whitelist []string         `msgpack:"wl,omitempty"`
	Preset    string           `msgpack:"preset,omitempty"`
	Path      string           `msgpack:"path,omitempty"`
	Project   *project.Project `msgpack:"project,omitempty"`
}

// EchoPayload is one result row on the wire. Occurrences can be omitted via
// config when the frontend only renders counts.
type EchoPayload struct {
	Phrase      string            `msgpack:"phrase"`
	Count       int               `msgpack:"count"`
	Words       int               `msgpack:"words"`
	Occurrences []echo.Occurrence `msgpack:"occ,omitempty"`
}

// AnalyzeResponse answers analyze and sort requests.
type AnalyzeResponse struct {
	ID        string        `msgpack:"id"`
	Echoes    []EchoPayload `msgpack:"echoes"`
	Count     int           `msgpack:"c"`
	Tokens    int           `msgpack:"tokens,omitempty"`
	TimeTaken int64         `msgpack:"t"`
}

// RecountResponse answers recount requests with the live occurrence spans.
type RecountResponse struct {
	ID          string            `msgpack:"id"`
	Occurrences []echo.Occurrence `msgpack:"occ"`
	Count       int               `msgpack:"c"`
}

// DirtyResponse answers dirty requests.
type DirtyResponse struct {
	ID    string `msgpack:"id"`
	Dirty bool   `msgpack:"dirty"`
}

// MaxWordsResponse answers maxwords requests with the text's token count.
type MaxWordsResponse struct {
	ID     string `msgpack:"id"`
	Tokens int    `msgpack:"tokens"`
}

// ProjectResponse answers project_load and project_save requests.
type ProjectResponse struct {
	ID      string           `msgpack:"id"`
	Status  string           `msgpack:"status"`
	Project *project.Project `msgpack:"project,omitempty"`
}

// StatusResponse is used for ready and health frames.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorFrame holds basic error information for failed requests.
type ErrorFrame struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// Error codes, grouped by what the frontend should do about them.
const (
	CodeBadRequest = 400 // malformed message or unusable input text
	CodeBadConfig  = 422 // word bounds need clamping
	CodeNotFound   = 404 // project file missing or unreadable
	CodeInternal   = 500
)
