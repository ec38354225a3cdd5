// Copyright 2025 The WordVec Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the word embedding similarity server.

WordVec serves cosine similarity queries over pre-trained word embedding
models (GloVe, Word2Vec, FastText). Models are loaded lazily on first
request, cached with an LRU bound, and shared between all clients. It can
operate as an HTTP JSON API or as a MessagePack IPC server over stdio for
integration with editors and other host processes.

# Usage

Start the HTTP server with default settings:

	wordvec

Use a custom embeddings directory and enable debug logging:

	wordvec -data /path/to/embeddings -d

Preload the default model so the first request is fast:

	wordvec -preload

Run in IPC mode:

	wordvec -ipc

The data directory holds one embedding file per model, named after the
model identifier: glove-wiki-gigaword-100.txt (GloVe text), .vec (text with
a count/dim header) or .bin (binary word2vec).

# Configuration

Runtime configuration is managed through a TOML file that is created with
defaults if missing:

	[server]
	host = "0.0.0.0"
	port = 5000
	rate_limit = 50.0
	rate_burst = 100
	max_batch = 1000

	[models]
	data_dir = "data/"
	default = "glove-wiki-gigaword-100"
	cache_limit = 3
	load_timeout_seconds = 300
	preload = false

# HTTP API

Compare two words:

	POST /api/compare {"word1": "king", "word2": "queen"}
	-> {"word1": "king", "word2": "queen", "model": "glove-wiki-gigaword-100",
	    "similarity": 0.7839, "status": "success"}

Batch comparison isolates per-pair failures; a word missing from the
vocabulary fails its pair, never the request. See the server package for
the full endpoint list.

# IPC Protocol

IPC mode speaks MessagePack over stdin/stdout with one response per
request, echoing the request id and including microsecond timing:

	{"id": "r1", "op": "compare", "w1": "king", "w2": "queen"}
	-> {"id": "r1", "st": "success", "m": "glove-wiki-gigaword-100", "sim": 0.7839, "t": 102}

# Command Line Flags

	-config string
	    Path to the TOML config file (default: platform config dir)
	-data string
	    Directory containing embedding files (default "data/")
	-addr string
	    Override the listen address from config (host:port)
	-d  Enable debug mode with detailed logging
	-ipc
	    Run the MessagePack stdio server instead of HTTP
	-preload
	    Load the default model before serving
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordvec/internal/utils"
	"github.com/bastiangx/wordvec/pkg/catalog"
	"github.com/bastiangx/wordvec/pkg/config"
	"github.com/bastiangx/wordvec/pkg/embedding"
	"github.com/bastiangx/wordvec/pkg/modelcache"
	"github.com/bastiangx/wordvec/pkg/server"
)

const (
	Version = "0.3.0"
	AppName = "wordvec"
	gh      = "https://github.com/bastiangx/wordvec"

	shutdownGrace = 10 * time.Second
)

// main wires config, catalog, loader and cache together and hands off to
// the HTTP or IPC server. It manages the flow only.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	configFlag := flag.String("config", "", "Path to the TOML config file")
	dataDir := flag.String("data", "", "Directory containing embedding files (overrides config)")
	addr := flag.String("addr", "", "Listen address host:port (overrides config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	ipcMode := flag.Bool("ipc", false, "Run the MessagePack stdio server instead of HTTP")
	preload := flag.Bool("preload", false, "Load the default model before serving")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath, err = pathResolver.GetConfigPath("wordvec.toml")
		if err != nil {
			log.Fatalf("Failed to determine config path: (%v)", err)
		}
	}
	log.Debugf("Using config file: (%s)", configPath)

	cfg, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyOverrides(cfg, *dataDir, *addr, *preload)

	resolvedDataDir, err := pathResolver.GetDataDir(cfg.Models.DataDir)
	if err != nil {
		log.Fatalf("Failed to resolve data dir: (%v)", err)
	}
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	cat := catalog.New()
	if !cat.Has(cfg.Models.Default) {
		log.Fatalf("Default model %q is not in the catalog", cfg.Models.Default)
	}

	loader := embedding.NewFileLoader(resolvedDataDir)
	cache := modelcache.New(cat, loader, modelcache.Options{
		MaxLoaded:   cfg.Models.CacheLimit,
		LoadTimeout: cfg.LoadTimeout(),
	})

	if cfg.Models.Preload {
		// A broken default model should not keep the service down:
		// the other models are still servable.
		if _, err := cache.Acquire(context.Background(), cfg.Models.Default); err != nil {
			log.Warnf("Failed to preload default model %s: %v", cfg.Models.Default, err)
		}
	}

	if *ipcMode {
		log.Debug("spawning IPC")
		sigHandler(func() { cache.UnloadAll() })
		srv := server.NewIPCServer(cfg, cache)
		if err := srv.Start(); err != nil {
			log.Fatalf("IPC server error: %v", err)
		}
		return
	}

	srv := server.NewServer(cfg, cat, cache)
	showStartupInfo(cfg, resolvedDataDir)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-sigc:
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("Shutdown error: %v", err)
		}
	}
}

// applyOverrides lets flags win over the config file.
func applyOverrides(cfg *config.Config, dataDir, addr string, preload bool) {
	if dataDir != "" {
		cfg.Models.DataDir = dataDir
	}
	if addr != "" {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			log.Fatalf("Invalid -addr %q: %v", addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Fatalf("Invalid port in -addr %q: %v", addr, err)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}
	if preload {
		cfg.Models.Preload = true
	}
}

// sigHandler exits on SIGINT/SIGTERM after running cleanup.
func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		if cleanup != nil {
			cleanup()
		}
		os.Exit(0)
	}()
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ WordVec ] Word embedding similarity, served fast!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(cfg *config.Config, dataDir string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("=========")
	println(" WordVec ")
	println("=========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("default model: %s", cfg.Models.Default)
	log.Infof("listening: http://%s", cfg.Addr())
	log.Info("status: ready")
	println("=========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
