// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// diamond-tui keeps score from the terminal. It stores sessions in the same
// data directory layout as the server.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/c2FmZQ/storage"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/ttbt-io/diamondtracker/backend"
	"github.com/ttbt-io/diamondtracker/config"
	"github.com/ttbt-io/diamondtracker/scoreboard"
	"github.com/ttbt-io/diamondtracker/tui"
)

var (
	configFile = flag.String("config", "", "Path to a YAML config file")
	sessionID  = flag.String("session", "", "Session to open. Defaults to the newest one, or a new one.")
	newSession = flag.Bool("new", false, "Start a new session")
)

func main() {
	flags := config.Default()
	flags.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(*configFile, flag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	// The board owns the terminal; log lines go to a file instead.
	logFile, err := tea.LogToFile(filepath.Join(cfg.DataDir, "diamond-tui.log"), "diamond-tui")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	masterKey, err := backend.OpenMasterKey(cfg.DataDir, os.Getenv(backend.MasterKeyEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Critical Security Error: %v\n", err)
		os.Exit(1)
	}
	st := storage.New(cfg.DataDir, masterKey)
	st.EnableCompression(true)
	store := backend.NewSessionStore(cfg.DataDir, st)

	id, err := pickSession(store, *sessionID, *newSession)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session: %v\n", err)
		os.Exit(1)
	}

	recap := scoreboard.NewRecap(nil)
	recap.MaxHighlights = cfg.Highlights
	s := scoreboard.Open(store.For(id),
		scoreboard.WithSettleDelay(cfg.SettleDelay),
		scoreboard.WithRecap(recap),
	)

	p := tea.NewProgram(tui.New(s), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Session %s\n", id)
}

// pickSession returns the session to open, creating one when asked to or
// when none exists.
func pickSession(store *backend.SessionStore, id string, fresh bool) (string, error) {
	if id != "" && !fresh {
		if _, err := store.LoadMeta(id); err != nil {
			return "", fmt.Errorf("session %s: %w", id, err)
		}
		return id, nil
	}
	if !fresh {
		var newest *backend.SessionMeta
		for meta, err := range store.ListSessions() {
			if err != nil {
				return "", err
			}
			if newest == nil || meta.CreatedAt > newest.CreatedAt {
				newest = &meta
			}
		}
		if newest != nil {
			return newest.ID, nil
		}
	}
	meta := backend.SessionMeta{ID: uuid.NewString()}
	if err := store.Create(meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}
