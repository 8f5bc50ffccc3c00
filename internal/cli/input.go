// Package cli handles cmd line input for DBG and testing the analysis pipeline
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fernicar/echoserve/internal/utils"
	"github.com/fernicar/echoserve/pkg/config"
	"github.com/fernicar/echoserve/pkg/echo"
	"github.com/fernicar/echoserve/pkg/project"
)

// InputHandler drives the interactive loop. It keeps one open project in
// memory, runs analyses against the engine, and prints results to the log.
// Commands start with ':'; any other line selects the phrase for live
// recounts against the loaded text.
type InputHandler struct {
	engine       *echo.Engine
	proj         *project.Project
	phrase       string
	limit        int
	showSpans    bool
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine *echo.Engine, cfg *config.Config) *InputHandler {
	p := project.New()
	p.MinWords = cfg.Engine.MinWords
	p.MaxWords = cfg.Engine.MaxWords
	return &InputHandler{
		engine:    engine,
		proj:      p,
		limit:     cfg.CLI.DefaultLimit,
		showSpans: cfg.CLI.ShowSpans,
	}
}

// Preload reads a text file into the working project before the loop starts.
func (h *InputHandler) Preload(path string) {
	h.loadFile(path)
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("EchoServe CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a phrase to live-count it, or :help for commands (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput processes a single line, either a ':' command or a phrase.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	if strings.HasPrefix(line, ":") {
		h.handleCommand(line)
		return
	}

	h.phrase = line
	h.recount(line)
}

func (h *InputHandler) handleCommand(line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":help":
		h.printHelp()
	case ":load":
		h.loadFile(arg)
	case ":find":
		h.analyze()
	case ":min":
		h.setBound(arg, &h.proj.MinWords)
	case ":max":
		h.setBound(arg, &h.proj.MaxWords)
	case ":sort":
		h.setSort(arg)
	case ":wl+":
		if err := h.proj.AddWhitelist(arg); err != nil {
			log.Errorf("Whitelist: %v", err)
			return
		}
		log.Printf("Whitelist now has %d entries", len(h.proj.Whitelist))
	case ":wl-":
		h.proj.RemoveWhitelist(arg)
		log.Printf("Whitelist now has %d entries", len(h.proj.Whitelist))
	case ":recount":
		if arg == "" {
			arg = h.phrase
		}
		h.recount(arg)
	case ":dirty":
		dirty := h.engine.IsDirty(h.proj.OriginalText, h.proj.MinWords, h.proj.MaxWords, h.proj.Whitelist)
		log.Printf("dirty: %v", dirty)
	case ":save":
		h.saveProject(arg)
	default:
		log.Errorf("Unknown command: %s (try :help)", cmd)
	}
}

func (h *InputHandler) printHelp() {
	log.Print(":load <file>     read a text file into the working project")
	log.Print(":find            re-run the analysis on the current text")
	log.Print(":min n / :max n  set the phrase length bounds and re-run")
	log.Print(":sort <preset>   reorder cached results")
	log.Print(":wl+ / :wl- <e>  add or remove a whitelist entry")
	log.Print(":recount [p]     live-count a phrase (defaults to the selected one)")
	log.Print(":dirty           check whether cached results are stale")
	log.Print(":save <file>     write the project to a JSON file")
}

func (h *InputHandler) loadFile(path string) {
	if path == "" {
		log.Error("Usage: :load <file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("Reading %s: %v", path, err)
		return
	}
	h.proj.OriginalText = string(data)
	stem := filepath.Base(path)
	h.proj.Name = strings.TrimSuffix(stem, filepath.Ext(stem))
	log.Printf("Loaded %s bytes from %s", utils.FormatWithCommas(len(data)), path)
	h.analyze()
}

func (h *InputHandler) setBound(arg string, target *int) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		log.Errorf("Not a number: %s", arg)
		return
	}
	*target = n
	h.analyze()
}

func (h *InputHandler) setSort(arg string) {
	if !echo.ValidPreset(arg) {
		log.Errorf("Unknown sort preset: %s", arg)
		log.Printf("presets: %s, %s", echo.MostRepeated, echo.LongestFirst)
		return
	}
	h.proj.SortPreset = arg
	h.printResults(h.engine.Sort(echo.SortPreset(arg)))
}

func (h *InputHandler) analyze() {
	if h.proj.OriginalText == "" {
		log.Warn("No text loaded, use :load first")
		return
	}

	start := time.Now()
	h.engine.SetPreset(h.proj.Preset())
	res, err := h.engine.Analyze(h.proj.OriginalText, h.proj.MinWords, h.proj.MaxWords, h.proj.Whitelist)
	if err != nil {
		log.Errorf("Analysis failed: %v", err)
		return
	}
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for %d tokens", elapsed, res.TokenCount)

	h.proj.SetResults(res.Echoes)
	h.printResults(res.Echoes)
}

func (h *InputHandler) recount(phrase string) {
	if phrase == "" {
		log.Error("No phrase selected, type one first")
		return
	}
	if h.proj.OriginalText == "" {
		log.Warn("No text loaded, use :load first")
		return
	}
	occs := echo.RecountLive(h.proj.OriginalText, phrase)
	log.Printf("'%s' now occurs %d times", phrase, len(occs))
	if h.showSpans {
		for _, o := range occs {
			log.Printf("    [%d:%d]", o.Start, o.End)
		}
	}
}

func (h *InputHandler) saveProject(path string) {
	if path == "" {
		log.Error("Usage: :save <file>")
		return
	}
	if err := h.proj.Save(path); err != nil {
		log.Errorf("Saving project: %v", err)
		return
	}
	log.Printf("Saved project '%s' to %s", h.proj.Name, path)
}

func (h *InputHandler) printResults(results []echo.EchoResult) {
	if len(results) == 0 {
		log.Warn("No echoes found")
		return
	}

	shown := len(results)
	if shown > h.limit {
		shown = h.limit
	}
	log.Printf("Found %d echoes:", len(results))
	for i, r := range results[:shown] {
		clPhrase := fmt.Sprintf("\033[38;5;75m%s\033[0m", utils.Truncate(r.Phrase, 40))
		log.Printf("%2d. %-48s (x%d, %d words)", i+1, clPhrase, r.Count, r.Words)
		if h.showSpans {
			for _, o := range r.Occurrences {
				log.Printf("    [%d:%d]", o.Start, o.End)
			}
		}
	}
	if shown < len(results) {
		log.Printf("... and %d more", len(results)-shown)
	}
}
