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

import (
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

var specialKeys = map[string]tea.KeyType{
	"enter":  tea.KeyEnter,
	"esc":    tea.KeyEsc,
	"tab":    tea.KeyTab,
	" ":      tea.KeySpace,
	"ctrl+n": tea.KeyCtrlN,
	"ctrl+r": tea.KeyCtrlR,
}

func keyMsg(s string) tea.KeyMsg {
	if t, ok := specialKeys[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys in order and returns the command of the last one.
func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func newTestModel(opts ...scoreboard.SessionOption) *Model {
	return New(scoreboard.Open(nil, opts...))
}

func TestModel_ScoreAndInning(t *testing.T) {
	m := newTestModel()
	press(m, "a", "a", "A", "h", "H", "H", "]", "]", "]", "[")

	g := m.session.Game()
	if g.AwayScore != 1 || g.HomeScore != 0 {
		t.Errorf("Expected 1-0, got %d-%d", g.AwayScore, g.HomeScore)
	}
	if g.Inning != 2 || !g.IsTopHalf {
		t.Errorf("Expected top of the 2nd, got %+v", g)
	}
}

func TestModel_SettleAnimation(t *testing.T) {
	m := newTestModel(scoreboard.WithSettleDelay(13 * time.Millisecond))

	if cmd := press(m, "o", "o"); cmd != nil {
		t.Fatal("Only the third out should start the animation")
	}
	cmd := press(m, "o")
	if cmd == nil {
		t.Fatal("Expected the settle animation to start")
	}

	var cleared []int
	for cmd != nil {
		if strings.Count(m.View(), "●") != 3-m.cleared {
			t.Errorf("Expected %d lit dots during step %d", 3-m.cleared, len(cleared))
		}
		press(m, "o", "O", "]")
		if g := m.session.Game(); g.Outs != 3 || !g.AdvancePending {
			t.Fatalf("Input during the settle changed the game: %+v", g)
		}
		_, cmd = m.Update(cmd())
		cleared = append(cleared, m.cleared)
	}
	if want := []int{1, 2, 3, 0}; !slices.Equal(cleared, want) {
		t.Errorf("Expected dots cleared in order %v, got %v", want, cleared)
	}
	if g := m.session.Game(); g.Outs != 0 || g.IsTopHalf || g.AdvancePending {
		t.Errorf("Expected bottom of the 1st with no outs, got %+v", g)
	}
}

func TestModel_StaleSettleIgnored(t *testing.T) {
	m := newTestModel(scoreboard.WithSettleDelay(13 * time.Millisecond))
	cmd := press(m, "o", "o", "o")
	press(m, "ctrl+n", "y")
	if m.session.Game() != scoreboard.NewGameState() {
		t.Fatalf("Expected a new game, got %+v", m.session.Game())
	}

	// The old animation finishing must not touch the new game.
	press(m, "o", "o")
	m.Update(settleMsg{gen: m.settleGen, step: len(settleSteps) - 1})
	if g := m.session.Game(); g.Outs != 2 {
		t.Errorf("Settle without a lock should be ignored, got %+v", g)
	}
	_, next := m.Update(cmd())
	if next != nil {
		t.Error("Stale settle tick should stop")
	}
	if g := m.session.Game(); g.Outs != 2 || !g.IsTopHalf {
		t.Errorf("Expected the new game untouched, got %+v", g)
	}
}

func TestModel_TimerTick(t *testing.T) {
	m := newTestModel()
	if m.Init() != nil {
		t.Fatal("Stopped clock should not tick")
	}
	if press(m, " ") == nil {
		t.Fatal("Starting the clock should start the tick")
	}
	gen := m.tickGen
	if m.syncTick() != nil {
		t.Error("A running tick must not be doubled")
	}
	if _, cmd := m.Update(tickMsg{gen: gen}); cmd == nil {
		t.Error("Current tick should reschedule")
	}

	if press(m, " ") != nil {
		t.Error("Pausing should not tick")
	}
	if _, cmd := m.Update(tickMsg{gen: gen}); cmd != nil {
		t.Error("Stale tick should stop")
	}
	if !strings.Contains(m.View(), "⏸ 00:00:00") {
		t.Error("Expected paused clock in the view")
	}
}

func TestModel_ResetTimerNeedsConfirmation(t *testing.T) {
	s := scoreboard.Open(nil)
	s.ToggleTimer()
	m := New(s)
	m.Init()

	press(m, "ctrl+r", "n")
	if !s.Timer().IsRunning || m.status != "Cancelled" {
		t.Fatalf("Expected the reset to be cancelled, status %q", m.status)
	}
	press(m, "ctrl+r", "y")
	if s.Timer().IsRunning || !strings.Contains(m.View(), "00:00:00") {
		t.Error("Expected a stopped zero clock")
	}
	if m.ticking {
		t.Error("Expected the tick to stop with the clock")
	}
}

func TestModel_PlayForm(t *testing.T) {
	m := newTestModel()
	press(m, "p", "Ruth", "tab", "double", "enter")
	if m.mode != modePlay || m.err == nil {
		t.Fatalf("Expected the form to stay open with an error, mode %d", m.mode)
	}
	if m.formFocus != fieldLocation {
		t.Errorf("Expected focus on the location, got %d", m.formFocus)
	}

	press(m, "left field", "enter")
	if m.mode != modeBoard || m.err != nil {
		t.Fatalf("Expected the form to close, err %v", m.err)
	}
	plays := m.session.Plays()
	if len(plays) != 1 || plays[0].Text != "Ruth hit a double to left field." {
		t.Errorf("Unexpected plays %+v", plays)
	}
	if !strings.Contains(m.View(), "T1") {
		t.Error("Expected the play meta in the view")
	}

	press(m, "p", "Gehrig", "esc")
	if len(m.session.Plays()) != 1 {
		t.Error("Cancelled form should not log a play")
	}
}

func TestModel_TeamNames(t *testing.T) {
	m := newTestModel()
	press(m, "n", "cubs", "enter", "N", "sox", "esc")
	if got := m.session.Teams().Label(scoreboard.TeamAway); got != "CUBS" {
		t.Errorf("Expected CUBS, got %q", got)
	}
	if got := m.session.Teams().Label(scoreboard.TeamHome); got != "HOME" {
		t.Errorf("Cancelled edit should keep HOME, got %q", got)
	}
	if !strings.Contains(m.View(), "CUBS") {
		t.Error("Expected the team name in the view")
	}
}

func TestModel_PitchCounter(t *testing.T) {
	m := newTestModel()
	press(m, "c", "b")
	if p := m.session.Pitch(); p.Total() != 0 || p.Simple != 0 {
		t.Fatalf("Counter is off, got %+v", p)
	}
	press(m, "m", "c", "c", "C", "b")
	if p := m.session.Pitch(); p.Simple != 1 || p.Balls != 0 {
		t.Errorf("Expected simple count 1, got %+v", p)
	}
	press(m, "m", "b", "s", "s", "S", "c")
	p := m.session.Pitch()
	if p.Mode != scoreboard.PitchAdvanced || p.Balls != 1 || p.Strikes != 1 || p.Simple != 1 {
		t.Errorf("Unexpected advanced count %+v", p)
	}
	if !strings.Contains(m.View(), "STRIKE 50%") {
		t.Errorf("Expected strike percentage in the view:\n%s", m.View())
	}
}

func TestModel_RecapAndShare(t *testing.T) {
	m := newTestModel()
	press(m, "a", "x")
	if m.mode != modeText || m.text != "Current Score: AWAY 1, HOME 0 (Top 1)" {
		t.Errorf("Unexpected share text %q", m.text)
	}
	press(m, "q")
	if m.mode != modeBoard {
		t.Error("Any key should close the text")
	}
	press(m, "g")
	if !strings.Contains(m.text, "1 to 0") {
		t.Errorf("Unexpected recap %q", m.text)
	}
}

func TestModel_ThemeAndWakeLock(t *testing.T) {
	m := newTestModel()
	press(m, "t", "t", "w")
	if m.session.ThemeIndex() != 2 || !m.session.WakeLock() {
		t.Errorf("Expected theme 2 and wake lock, got %d %v", m.session.ThemeIndex(), m.session.WakeLock())
	}
	if !strings.Contains(m.View(), "keep awake") {
		t.Error("Expected wake lock marker in the view")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel()
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}
