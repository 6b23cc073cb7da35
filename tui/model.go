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

// Package tui is a terminal scoreboard. It drives a scoreboard.Session
// from the keyboard and redraws after every change.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

type mode int

const (
	modeBoard   mode = iota // The scoreboard itself
	modePlay                // Play log form
	modeTeam                // Editing a team name
	modeConfirm             // Waiting for y/n
	modeText                // Showing the recap or share line
)

type confirmKind int

const (
	confirmTimerReset confirmKind = iota
	confirmNewGame
)

// Play form fields
const (
	fieldPlayer = iota
	fieldType
	fieldLocation
)

// settleSteps are the pauses of the third-out animation at the default
// settle delay: hold the full row, clear the dots one at a time, then hold
// the empty row before the half inning changes.
var settleSteps = []time.Duration{
	600 * time.Millisecond,
	200 * time.Millisecond,
	200 * time.Millisecond,
	300 * time.Millisecond,
}

type tickMsg struct{ gen int }

type settleMsg struct {
	gen  int
	step int
}

// Model is the bubbletea model of the terminal scoreboard.
type Model struct {
	session *scoreboard.Session
	keys    keyMap
	help    help.Model

	mode    mode
	confirm confirmKind

	form      []textinput.Model
	formFocus int
	team      scoreboard.Team
	teamInput textinput.Model

	text   string // recap or share line in modeText
	status string
	err    error

	// cleared counts the out dots already wiped by the settle animation.
	cleared   int
	settleGen int

	ticking bool
	tickGen int

	width  int
	height int
}

// New returns a model over s.
func New(s *scoreboard.Session) *Model {
	m := &Model{
		session: s,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}

	placeholders := []string{"Player", "Play type", "Location"}
	m.form = make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		ti := textinput.New()
		ti.Placeholder = p
		ti.CharLimit = 50
		ti.Prompt = fmt.Sprintf("%-10s", p+":")
		m.form[i] = ti
	}
	types := make([]string, len(scoreboard.PlayTypes))
	for i, pt := range scoreboard.PlayTypes {
		types[i] = string(pt)
	}
	m.form[fieldType].ShowSuggestions = true
	m.form[fieldType].SetSuggestions(types)

	m.teamInput = textinput.New()
	m.teamInput.CharLimit = 30
	return m
}

// Init starts the display tick when the game clock was left running.
func (m *Model) Init() tea.Cmd {
	return m.syncTick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if msg.gen != m.tickGen || !m.session.Timer().IsRunning {
			return m, nil
		}
		return m, m.tick()

	case settleMsg:
		return m, m.handleSettle(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modePlay:
			return m, m.updatePlayForm(msg)
		case modeTeam:
			return m, m.updateTeamInput(msg)
		case modeConfirm:
			return m, m.updateConfirm(msg)
		case modeText:
			m.mode = modeBoard
			return m, nil
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m *Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.err = "", nil
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.AwayUp):
		s.AdjustScore(scoreboard.TeamAway, 1)
	case key.Matches(msg, m.keys.AwayDown):
		s.AdjustScore(scoreboard.TeamAway, -1)
	case key.Matches(msg, m.keys.HomeUp):
		s.AdjustScore(scoreboard.TeamHome, 1)
	case key.Matches(msg, m.keys.HomeDown):
		s.AdjustScore(scoreboard.TeamHome, -1)
	case key.Matches(msg, m.keys.Out):
		if hint, ok := s.RecordOut(); ok && hint.Pending {
			return m, m.startSettle()
		}
	case key.Matches(msg, m.keys.RevokeOut):
		s.RevokeOut()
	case key.Matches(msg, m.keys.NextInning):
		s.AdvanceInning(1)
	case key.Matches(msg, m.keys.PrevInning):
		s.AdvanceInning(-1)
	case key.Matches(msg, m.keys.Timer):
		s.ToggleTimer()
		return m, m.syncTick()
	case key.Matches(msg, m.keys.ResetTimer):
		m.mode, m.confirm = modeConfirm, confirmTimerReset
	case key.Matches(msg, m.keys.NewGame):
		m.mode, m.confirm = modeConfirm, confirmNewGame
	case key.Matches(msg, m.keys.AddPlay):
		return m, m.openPlayForm()
	case key.Matches(msg, m.keys.AwayName):
		return m, m.openTeamInput(scoreboard.TeamAway)
	case key.Matches(msg, m.keys.HomeName):
		return m, m.openTeamInput(scoreboard.TeamHome)
	case key.Matches(msg, m.keys.Theme):
		s.CycleTheme()
	case key.Matches(msg, m.keys.WakeLock):
		if s.ToggleWakeLock() {
			m.status = "Screen stays awake"
		}
	case key.Matches(msg, m.keys.PitchMode):
		s.CyclePitchMode()
	case key.Matches(msg, m.keys.PitchCount):
		m.pitch(scoreboard.CounterSimple, 1)
	case key.Matches(msg, m.keys.PitchBall):
		m.pitch(scoreboard.CounterBalls, 1)
	case key.Matches(msg, m.keys.PitchStrike):
		m.pitch(scoreboard.CounterStrikes, 1)
	case key.Matches(msg, m.keys.PitchUndo):
		counter := map[string]string{"C": scoreboard.CounterSimple, "B": scoreboard.CounterBalls, "S": scoreboard.CounterStrikes}[msg.String()]
		m.pitch(counter, -1)
	case key.Matches(msg, m.keys.Recap):
		m.mode, m.text = modeText, s.Recap()
	case key.Matches(msg, m.keys.Share):
		m.mode, m.text = modeText, s.ShareLine()
	}
	return m, nil
}

// pitch only counts in the mode that shows the counter.
func (m *Model) pitch(counter string, delta int) {
	mode := m.session.Pitch().Mode
	simple := counter == scoreboard.CounterSimple
	if mode == scoreboard.PitchOff || (mode == scoreboard.PitchSimple) != simple {
		return
	}
	if err := m.session.AdjustPitch(counter, delta); err != nil {
		m.err = err
	}
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	m.mode = modeBoard
	if msg.String() != "y" && msg.String() != "Y" {
		m.status = "Cancelled"
		return nil
	}
	switch m.confirm {
	case confirmTimerReset:
		m.session.ResetTimer()
		m.status = "Clock reset"
	case confirmNewGame:
		m.session.Reset()
		m.cleared = 0
		m.status = "New game"
	}
	return m.syncTick()
}

func (m *Model) openPlayForm() tea.Cmd {
	m.mode = modePlay
	m.formFocus = fieldPlayer
	for i := range m.form {
		m.form[i].Reset()
		m.form[i].Blur()
	}
	return m.form[fieldPlayer].Focus()
}

func (m *Model) updatePlayForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeBoard
		return nil
	case "tab", "down":
		return m.focusField((m.formFocus + 1) % len(m.form))
	case "shift+tab", "up":
		return m.focusField((m.formFocus + len(m.form) - 1) % len(m.form))
	case "enter":
		rec, err := m.session.AddPlay(m.form[fieldPlayer].Value(), m.form[fieldType].Value(), m.form[fieldLocation].Value())
		if err != nil {
			m.err = err
			var ve *scoreboard.ValidationError
			if errors.As(err, &ve) {
				switch ve.Field {
				case "player":
					return m.focusField(fieldPlayer)
				case "playType":
					return m.focusField(fieldType)
				case "location":
					return m.focusField(fieldLocation)
				}
			}
			return nil
		}
		m.mode, m.err = modeBoard, nil
		m.status = rec.Text
		return nil
	}
	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.form[m.formFocus].Blur()
	m.formFocus = i
	return m.form[i].Focus()
}

func (m *Model) openTeamInput(team scoreboard.Team) tea.Cmd {
	m.mode, m.team = modeTeam, team
	m.teamInput.Prompt = fmt.Sprintf("%s team: ", m.session.Teams().Label(team))
	m.teamInput.Placeholder = "AWAY"
	if team == scoreboard.TeamHome {
		m.teamInput.Placeholder = "HOME"
	}
	raw := m.session.Teams().Away
	if team == scoreboard.TeamHome {
		raw = m.session.Teams().Home
	}
	m.teamInput.SetValue(raw)
	m.teamInput.CursorEnd()
	return m.teamInput.Focus()
}

func (m *Model) updateTeamInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeBoard
		m.teamInput.Blur()
		return nil
	case "enter":
		m.session.SetTeamName(m.team, m.teamInput.Value())
		m.mode = modeBoard
		m.teamInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.teamInput, cmd = m.teamInput.Update(msg)
	return cmd
}

// syncTick starts the one-second redraw while the game clock runs and
// stops it otherwise. It never starts a second tick.
func (m *Model) syncTick() tea.Cmd {
	running := m.session.Timer().IsRunning
	switch {
	case running && !m.ticking:
		m.ticking = true
		m.tickGen++
		return m.tick()
	case !running && m.ticking:
		m.ticking = false
		m.tickGen++
	}
	return nil
}

func (m *Model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// scaled stretches a default animation pause to the session's settle delay.
func (m *Model) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * float64(m.session.SettleDelay()) / float64(scoreboard.DefaultSettleDelay))
}

func (m *Model) startSettle() tea.Cmd {
	m.settleGen++
	m.cleared = 0
	return m.settleTick(0)
}

func (m *Model) settleTick(step int) tea.Cmd {
	gen := m.settleGen
	return tea.Tick(m.scaled(settleSteps[step]), func(time.Time) tea.Msg {
		return settleMsg{gen: gen, step: step}
	})
}

func (m *Model) handleSettle(msg settleMsg) tea.Cmd {
	if msg.gen != m.settleGen || !m.session.Game().AdvancePending {
		return nil
	}
	if msg.step < len(settleSteps)-1 {
		m.cleared = msg.step + 1
		return m.settleTick(msg.step + 1)
	}
	m.cleared = 0
	m.session.CompleteHalfInningAdvance()
	return nil
}
