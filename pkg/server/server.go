package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fernicar/echoserve/pkg/config"
	"github.com/fernicar/echoserve/pkg/echo"
	"github.com/fernicar/echoserve/pkg/project"
)

// Server handles the IPC for echo analysis
type Server struct {
	engine *echo.Engine
	cfg    *config.Config
	dec    *msgpack.Decoder
	enc    *msgpack.Encoder
	wmu    sync.Mutex
}

// NewServer creates a new analysis server using stdin/stdout for IPC
func NewServer(engine *echo.Engine, cfg *config.Config) *Server {
	return NewServerIO(engine, cfg, os.Stdin, os.Stdout)
}

// NewServerIO creates a server on explicit streams, mainly for tests.
func NewServerIO(engine *echo.Engine, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	engine.SetPreset(echo.SortPreset(cfg.Server.DefaultSortPreset))
	return &Server{
		engine: engine,
		cfg:    cfg,
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	// Signal that the server is ready
	s.send(StatusResponse{Status: "ready"})

	// incoming requests stdin
	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one decoded request.
func (s *Server) handleRequest(req Request) {
	switch req.Command {
	case "analyze":
		s.handleAnalyze(req)
	case "sort":
		s.handleSort(req)
	case "recount":
		s.handleRecount(req)
	case "dirty":
		s.handleDirty(req)
	case "maxwords":
		s.handleMaxWords(req)
	case "project_load":
		s.handleProjectLoad(req)
	case "project_save":
		s.handleProjectSave(req)
	case "health":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown command: %s", req.Command), CodeBadRequest)
	}
}

// send marshals the given response and writes it to the client stream.
func (s *Server) send(response interface{}) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error frame
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorFrame{ID: id, Error: message, Code: code})
}

// sendEngineError maps the engine's error taxonomy onto wire codes.
func (s *Server) sendEngineError(id string, err error) {
	var inputErr *echo.InputError
	var configErr *echo.ConfigError
	var validationErr *echo.ValidationError
	var persistErr *project.PersistenceError
	switch {
	case errors.As(err, &inputErr):
		s.sendError(id, inputErr.Error(), CodeBadRequest)
	case errors.As(err, &configErr):
		s.sendError(id, configErr.Error(), CodeBadConfig)
	case errors.As(err, &validationErr):
		s.sendError(id, validationErr.Error(), CodeBadRequest)
	case errors.As(err, &persistErr):
		s.sendError(id, persistErr.Error(), CodeNotFound)
	default:
		s.sendError(id, err.Error(), CodeInternal)
	}
}

// handleAnalyze runs the full pipeline. Bounds left at zero fall back to the
// configured defaults; a ConfigError is the frontend's cue to clamp and retry.
func (s *Server) handleAnalyze(req Request) {
	if req.Text == "" {
		s.sendError(req.ID, "Missing 'text' parameter", CodeBadRequest)
		log.Debug("Text is empty in request")
		return
	}
	if len(req.Text) > s.cfg.Engine.MaxTextLen {
		s.sendError(req.ID, fmt.Sprintf("Text exceeds maximum length of %d bytes", s.cfg.Engine.MaxTextLen), CodeBadRequest)
		return
	}

	minWords := req.MinWords
	if minWords == 0 {
		minWords = s.cfg.Engine.MinWords
	}
	maxWords := req.MaxWords
	if maxWords == 0 {
		maxWords = s.cfg.Engine.MaxWords
	}

	start := time.Now()
	res, err := s.engine.Analyze(req.Text, minWords, maxWords, req.Whitelist)
	if err != nil {
		s.sendEngineError(req.ID, err)
		return
	}
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for %d echoes", elapsed, len(res.Echoes))

	s.send(AnalyzeResponse{
		ID:        req.ID,
		Echoes:    s.payload(res.Echoes),
		Count:     len(res.Echoes),
		Tokens:    res.TokenCount,
		TimeTaken: elapsed.Milliseconds(),
	})
}

// handleSort reorders the cached results; no occurrences are recomputed.
func (s *Server) handleSort(req Request) {
	if !echo.ValidPreset(req.Preset) {
		s.sendError(req.ID, fmt.Sprintf("Unknown sort preset: %s", req.Preset), CodeBadRequest)
		return
	}
	start := time.Now()
	sorted := s.engine.Sort(echo.SortPreset(req.Preset))
	s.send(AnalyzeResponse{
		ID:        req.ID,
		Echoes:    s.payload(sorted),
		Count:     len(sorted),
		TimeTaken: time.Since(start).Milliseconds(),
	})
}

// handleRecount scans the live text for one phrase. Zero matches is a normal
// response, not an error.
func (s *Server) handleRecount(req Request) {
	occurrences := echo.RecountLive(req.Text, req.Phrase)
	s.send(RecountResponse{
		ID:          req.ID,
		Occurrences: occurrences,
		Count:       len(occurrences),
	})
}

func (s *Server) handleDirty(req Request) {
	s.send(DirtyResponse{
		ID:    req.ID,
		Dirty: s.engine.IsDirty(req.Text, req.MinWords, req.MaxWords, req.Whitelist),
	})
}

func (s *Server) handleMaxWords(req Request) {
	s.send(MaxWordsResponse{
		ID:     req.ID,
		Tokens: s.engine.MaxPhraseLength(req.Text, req.Whitelist),
	})
}

func (s *Server) handleProjectLoad(req Request) {
	if req.Path == "" {
		s.sendError(req.ID, "Missing 'path' parameter", CodeBadRequest)
		return
	}
	p, err := project.Load(req.Path)
	if err != nil {
		s.sendEngineError(req.ID, err)
		return
	}
	s.engine.SetPreset(p.Preset())
	s.send(ProjectResponse{ID: req.ID, Status: "loaded", Project: p})
}

func (s *Server) handleProjectSave(req Request) {
	if req.Path == "" || req.Project == nil {
		s.sendError(req.ID, "Missing 'path' or 'project' parameter", CodeBadRequest)
		return
	}
	if err := req.Project.Save(req.Path); err != nil {
		s.sendEngineError(req.ID, err)
		return
	}
	s.send(ProjectResponse{ID: req.ID, Status: "saved"})
}

// payload converts results to wire rows, dropping spans when configured out.
func (s *Server) payload(results []echo.EchoResult) []EchoPayload {
	rows := make([]EchoPayload, len(results))
	for i, res := range results {
		rows[i] = EchoPayload{
			Phrase: res.Phrase,
			Count:  res.Count,
			Words:  res.Words,
		}
		if s.cfg.Server.IncludeOccurrences {
			rows[i].Occurrences = res.Occurrences
		}
	}
	return rows
}
