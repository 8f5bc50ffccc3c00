// Copyright 2026 The EchoServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the echo detection server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

EchoServe finds "echoes" in narrative prose: multi-word phrases that repeat
across a text, the kind an author wants flagged during revision. It can
operate as a MessagePack IPC server for integration with editors and writing
tools, as an interactive CLI for testing, or as a file watcher that keeps
counts fresh while a manuscript is being edited.

The engine tokenizes with a whitelist of protected literals (abbreviations
like "Dr." survive as single tokens), indexes every n-gram between the
configured phrase-length bounds, and reports only maximal echoes: a shorter
repeated phrase is dropped when every place it appears is inside occurrences
of one longer reported phrase.

# Usage

Start the server with default settings:

	echoserve

Enable debug mode:

	echoserve -d

Run in CLI mode for interactive testing, preloading a manuscript:

	echoserve -c -file draft.txt

Watch a file and keep live counts fresh across saves:

	echoserve -w draft.txt -debounce 250

# Configuration

Runtime configuration is managed through a TOML file covering engine bounds,
server behavior, and CLI defaults:

	[engine]
	min_words = 2
	max_words = 8
	max_text_len = 4000000

	[server]
	default_sort_preset = "most_repeated_short_to_long"
	include_occurrences = true

	[live]
	debounce_ms = 250

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Analysis requests
are processed synchronously with millisecond timing included in responses.

Send an analysis request:

	{"id": "req1", "cmd": "analyze", "text": "...", "min": 2, "max": 8}

Receive maximal echoes with spans and counts:

	{"id": "req1", "echoes": [{"phrase": "and then", "count": 4, ...}], "c": 1, "t": 3}

Live recounts, staleness checks and project round-trips use the same channel:

	{"id": "rc1", "cmd": "recount", "text": "...", "phrase": "and then"}
	{"id": "d1", "cmd": "dirty", "text": "...", "min": 2, "max": 8}
	{"id": "p1", "cmd": "project_load", "path": "novel.json"}

# Server Mode

The default mode starts a MessagePack IPC server that processes analysis
requests from stdin and writes responses to stdout. This design lets an
editor frontend drive the engine over process pipes instead of linking it in.

	srv := server.NewServer(engine, appConfig)
	err := srv.Start()

The server handles request parsing, validation, and response formatting,
mapping the engine's error taxonomy onto numeric wire codes so callers can
distinguish bad input from bad configuration.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging the
pipeline. Lines starting with ':' are commands; any other line replaces the
working text and re-runs the analysis.

	inputHandler := cli.NewInputHandler(engine, appConfig)
	err := inputHandler.Start()

This mode is primarily intended for development and testing new features
before deploying to server mode.

# Watch Mode

Watch mode monitors a single text file and re-runs the staleness check and
debounced live recount on every save. Editor double-writes collapse into one
scan per quiescence window.

# Command Line Flags

The following flags control application behavior:

	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-w string
	    Watch the given text file instead of serving
	-file string
	    Text file to preload in CLI mode
	-config string
	    Explicit config file path
	-min int
	    Minimum phrase length in words
	-max int
	    Maximum phrase length in words
	-debounce int
	    Live recount quiescence window in milliseconds
	-phrase string
	    Phrase to live-count in watch mode

The application resolves its config path relative to the user config
directory, falling back to the executable location for portable installs.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/fernicar/echoserve/internal/cli"
	"github.com/fernicar/echoserve/internal/utils"
	"github.com/fernicar/echoserve/internal/watch"
	"github.com/fernicar/echoserve/pkg/config"
	"github.com/fernicar/echoserve/pkg/echo"
	"github.com/fernicar/echoserve/pkg/server"
)

const (
	Version = "0.3.0-beta"
	AppName = "echoserve"
	gh      = "https://github.com/fernicar/echoserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server, CLI or watcher.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	watchFile := flag.String("w", "", "Watch a text file and keep live counts fresh")
	preloadFile := flag.String("file", "", "Text file to preload in CLI mode")
	configPathFlag := flag.String("config", "", "Explicit config file path")
	minWords := flag.Int("min", defaultConfig.Engine.MinWords, "Minimum phrase length in words (n >= 2)")
	maxWords := flag.Int("max", defaultConfig.Engine.MaxWords, "Maximum phrase length in words")
	debounceMs := flag.Int("debounce", defaultConfig.Live.DebounceMs, "Live recount quiescence window in ms")
	phrase := flag.String("phrase", "", "Phrase to live-count in watch mode")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["version"] = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ EchoServe ] Finds repeated phrases hiding in your prose!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
		os.Exit(1)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	configPath := *configPathFlag
	if configPath == "" {
		configPath, err = pathResolver.GetConfigPath("echoserve.toml")
		if err != nil {
			log.Fatalf("Failed to determine config path: (%v)", err)
			os.Exit(1)
		}
	}
	log.Debugf("Using config file: (%s)", configPath)

	appConfig, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Flags override the config file when set explicitly.
	if *minWords != defaultConfig.Engine.MinWords {
		appConfig.Engine.MinWords = *minWords
	}
	if *maxWords != defaultConfig.Engine.MaxWords {
		appConfig.Engine.MaxWords = *maxWords
	}
	if *debounceMs != defaultConfig.Live.DebounceMs {
		appConfig.Live.DebounceMs = *debounceMs
	}
	appConfig.Clamp()

	engine := echo.NewEngine()

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Engine info:",
			"minWords", appConfig.Engine.MinWords,
			"maxWords", appConfig.Engine.MaxWords,
			"limit", appConfig.CLI.DefaultLimit)

		inputHandler := cli.NewInputHandler(engine, appConfig)
		if *preloadFile != "" {
			inputHandler.Preload(*preloadFile)
		}
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	if *watchFile != "" {
		window := time.Duration(appConfig.Live.DebounceMs) * time.Millisecond
		watcher, err := watch.NewWatcher(engine, *watchFile,
			appConfig.Engine.MinWords, appConfig.Engine.MaxWords, nil, window)
		if err != nil {
			log.Fatalf("Failed to init watcher: %v", err)
			os.Exit(1)
		}
		defer watcher.Stop()
		watcher.SetPhrase(*phrase)

		log.SetLevel(log.InfoLevel)
		log.Infof("Watching ( %s )", *watchFile)
		if err := watcher.Start(); err != nil {
			log.Fatalf("Watcher error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig)

	showStartupInfo(configPath)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(configPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" EchoServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
