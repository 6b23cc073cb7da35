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

package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every board binding. It implements help.KeyMap.
type keyMap struct {
	AwayUp      key.Binding
	AwayDown    key.Binding
	HomeUp      key.Binding
	HomeDown    key.Binding
	Out         key.Binding
	RevokeOut   key.Binding
	NextInning  key.Binding
	PrevInning  key.Binding
	Timer       key.Binding
	ResetTimer  key.Binding
	AddPlay     key.Binding
	AwayName    key.Binding
	HomeName    key.Binding
	Theme       key.Binding
	WakeLock    key.Binding
	PitchMode   key.Binding
	PitchCount  key.Binding
	PitchBall   key.Binding
	PitchStrike key.Binding
	PitchUndo   key.Binding
	Recap       key.Binding
	Share       key.Binding
	NewGame     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		AwayUp:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a/A", "away ±1")),
		AwayDown:    key.NewBinding(key.WithKeys("A")),
		HomeUp:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h/H", "home ±1")),
		HomeDown:    key.NewBinding(key.WithKeys("H")),
		Out:         key.NewBinding(key.WithKeys("o"), key.WithHelp("o/O", "out / undo out")),
		RevokeOut:   key.NewBinding(key.WithKeys("O")),
		NextInning:  key.NewBinding(key.WithKeys("]", "right"), key.WithHelp("]/[", "inning")),
		PrevInning:  key.NewBinding(key.WithKeys("[", "left")),
		Timer:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause clock")),
		ResetTimer:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset clock")),
		AddPlay:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "log play")),
		AwayName:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n/N", "team names")),
		HomeName:    key.NewBinding(key.WithKeys("N")),
		Theme:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		WakeLock:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "keep awake")),
		PitchMode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "pitch mode")),
		PitchCount:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c/b/s", "pitch, ball, strike")),
		PitchBall:   key.NewBinding(key.WithKeys("b")),
		PitchStrike: key.NewBinding(key.WithKeys("s")),
		PitchUndo:   key.NewBinding(key.WithKeys("C", "B", "S"), key.WithHelp("C/B/S", "undo pitch")),
		Recap:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "recap")),
		Share:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "share line")),
		NewGame:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new game")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AwayUp, k.HomeUp, k.Out, k.NextInning, k.Timer, k.AddPlay, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.AwayUp, k.HomeUp, k.Out, k.NextInning},
		{k.Timer, k.ResetTimer, k.AddPlay, k.AwayName},
		{k.PitchMode, k.PitchCount, k.PitchUndo, k.Theme, k.WakeLock},
		{k.Recap, k.Share, k.NewGame, k.Help, k.Quit},
	}
}
