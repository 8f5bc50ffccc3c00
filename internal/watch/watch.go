// Package watch monitors a single narrative text file with fsnotify and keeps
// the analysis fresh across saves. Editors often trigger multiple writes per
// save, so raw events are debounced before the file is re-read; the live
// recount itself goes through the engine's coalescing Recounter.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/fernicar/echoserve/internal/logger"
	"github.com/fernicar/echoserve/pkg/echo"
)

const eventDebounce = 50 * time.Millisecond

// Watcher follows one text file, re-running the analysis when the cached
// results go stale and recounting the selected phrase on every save.
type Watcher struct {
	engine    *echo.Engine
	recounter *echo.Recounter
	fw        *fsnotify.Watcher
	log       *log.Logger

	path      string
	minWords  int
	maxWords  int
	whitelist []string

	mu      sync.Mutex
	phrase  string
	done    chan struct{}
	stopped bool
}

// NewWatcher builds a watcher over the given file. The quiescence window
// bounds how often a save burst turns into a recount.
func NewWatcher(engine *echo.Engine, path string, minWords, maxWords int, whitelist []string, window time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		engine:    engine,
		fw:        fw,
		log:       logger.New("watch"),
		path:      abs,
		minWords:  minWords,
		maxWords:  maxWords,
		whitelist: whitelist,
		done:      make(chan struct{}),
	}
	w.recounter = echo.NewRecounter(window, w.report)
	return w, nil
}

// SetPhrase selects which phrase live recounts track. Empty disables them.
func (w *Watcher) SetPhrase(phrase string) {
	w.mu.Lock()
	w.phrase = phrase
	w.mu.Unlock()
}

// Start runs one initial analysis and then blocks on file events until Stop.
// Watching the parent directory instead of the file itself survives the
// rename-and-replace save strategy most editors use.
func (w *Watcher) Start() error {
	if err := w.fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.refresh()

	lastEvent := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			now := time.Now()
			if last, seen := lastEvent[event.Name]; seen && now.Sub(last) < eventDebounce {
				continue
			}
			lastEvent[event.Name] = now
			w.refresh()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("Watcher: %v", err)

		case <-w.done:
			return nil
		}
	}
}

// refresh re-reads the file, reconciles the cache and schedules a recount.
func (w *Watcher) refresh() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Errorf("Reading %s: %v", w.path, err)
		return
	}
	text := string(data)

	if w.engine.IsDirty(text, w.minWords, w.maxWords, w.whitelist) {
		w.log.Info("Text changed, re-analyzing", "file", filepath.Base(w.path))
		w.engine.AnalyzeAsync(text, w.minWords, w.maxWords, w.whitelist, func(res *echo.AnalysisResult, err error) {
			if err != nil {
				w.log.Errorf("Analysis failed: %v", err)
				return
			}
			w.log.Printf("Found %d echoes across %d tokens", len(res.Echoes), res.TokenCount)
		})
	}

	w.mu.Lock()
	phrase := w.phrase
	w.mu.Unlock()
	if phrase != "" {
		w.recounter.Trigger(text, phrase)
	}
}

func (w *Watcher) report(phrase string, occurrences []echo.Occurrence) {
	w.log.Printf("'%s' now occurs %d times", phrase, len(occurrences))
}

// Stop ends monitoring and releases all resources. Safe to call twice.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	w.recounter.Stop()
	return w.fw.Close()
}
