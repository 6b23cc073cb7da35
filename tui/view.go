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
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

// maxPlayRows caps the play log shown under the board.
const maxPlayRows = 8

type styles struct {
	frame   lipgloss.Style
	label   lipgloss.Style
	batting lipgloss.Style
	score   lipgloss.Style
	inning  lipgloss.Style
	dim     lipgloss.Style
	meta    lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
}

func newStyles(t scoreboard.Theme) styles {
	bg := lipgloss.Color(t.Background)
	accent := lipgloss.Color(t.Accent)
	primary := lipgloss.Color(t.Primary)
	return styles{
		frame:   lipgloss.NewStyle().Background(bg).Foreground(accent).Padding(1, 2).Border(lipgloss.RoundedBorder()).BorderForeground(primary),
		label:   lipgloss.NewStyle().Background(bg).Foreground(accent).Bold(true),
		batting: lipgloss.NewStyle().Background(primary).Foreground(lipgloss.Color(t.ButtonText)).Bold(true),
		score:   lipgloss.NewStyle().Background(bg).Foreground(accent).Bold(true).Width(5).Align(lipgloss.Center),
		inning:  lipgloss.NewStyle().Background(bg).Foreground(primary).Bold(true).Padding(0, 3),
		dim:     lipgloss.NewStyle().Background(bg).Foreground(primary),
		meta:    lipgloss.NewStyle().Background(bg).Foreground(primary).Width(4),
		status:  lipgloss.NewStyle().Foreground(primary).Italic(true),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true),
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	v := m.session.View()
	st := newStyles(v.Theme)

	var b strings.Builder
	b.WriteString(st.frame.Render(m.board(v, st)))
	b.WriteString("\n")

	switch m.mode {
	case modePlay:
		b.WriteString("Log a play (tab to move, enter to save, esc to cancel)\n")
		for _, f := range m.form {
			b.WriteString(f.View() + "\n")
		}
	case modeTeam:
		b.WriteString(m.teamInput.View() + "\n")
	case modeConfirm:
		q := "Reset the game clock?"
		if m.confirm == confirmNewGame {
			q = "Start a new game? Scores, outs and plays are cleared."
		}
		b.WriteString(q + " [y/N]\n")
	case modeText:
		b.WriteString(m.text + "\n\n")
		b.WriteString(st.status.Render("press any key") + "\n")
	}

	if m.err != nil {
		b.WriteString(st.err.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(st.status.Render(m.status) + "\n")
	}
	if m.mode == modeBoard {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) board(v scoreboard.View, st styles) string {
	team := func(label string, batting bool) string {
		if batting {
			return st.batting.Render(" ▶ " + label + " ")
		}
		return st.label.Render("   " + label + " ")
	}
	arrow := "▲"
	if v.Half == "BOTTOM" {
		arrow = "▼"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		team(v.AwayLabel, v.AwayBatting),
		st.score.Render(fmt.Sprint(v.AwayScore)),
		st.inning.Render(fmt.Sprintf("%s %s", arrow, scoreboard.Ordinal(v.Inning))),
		st.score.Render(fmt.Sprint(v.HomeScore)),
		team(v.HomeLabel, v.HomeBatting),
	)

	clock := "⏸ " + v.Timer
	if v.TimerRunning {
		clock = "⏵ " + v.Timer
	}
	lines := []string{
		header,
		"",
		st.label.Render("OUTS ") + m.outDots(v, st) + st.dim.Render("    "+clock),
	}
	if p := pitchLine(v); p != "" {
		lines = append(lines, st.dim.Render(p))
	}
	if v.WakeLock {
		lines = append(lines, st.dim.Render("☀ keep awake"))
	}

	if len(v.Plays) > 0 {
		lines = append(lines, "")
		for i, row := range v.Plays {
			if i == maxPlayRows {
				lines = append(lines, st.dim.Render(fmt.Sprintf("… %d more", len(v.Plays)-maxPlayRows)))
				break
			}
			lines = append(lines, st.meta.Render(row.Meta)+st.label.UnsetBold().Render(row.Text))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// outDots draws the out row. While the half inning settles the animation
// wipes the dots from the left.
func (m *Model) outDots(v scoreboard.View, st styles) string {
	dots := make([]string, len(v.OutDots))
	for i, on := range v.OutDots {
		if on && !(v.Locked && i < m.cleared) {
			dots[i] = "●"
		} else {
			dots[i] = "○"
		}
	}
	return st.label.Render(strings.Join(dots, " "))
}

func pitchLine(v scoreboard.View) string {
	switch v.Pitch.Mode {
	case scoreboard.PitchSimple:
		return fmt.Sprintf("PITCHES %d", v.Pitch.Simple)
	case scoreboard.PitchAdvanced:
		return fmt.Sprintf("B %d  S %d  TOTAL %d  STRIKE %d%%", v.Pitch.Balls, v.Pitch.Strikes, v.PitchTotal, v.StrikePercent)
	}
	return ""
}
