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

package scoreboard

// PlayRow is a rendered play log line.
type PlayRow struct {
	Text string `json:"text"`
	Meta string `json:"meta"`
}

// View is what a presentation layer needs to draw the scoreboard. It is a
// copy; changing it has no effect on the session.
type View struct {
	AwayLabel   string `json:"awayLabel"`
	HomeLabel   string `json:"homeLabel"`
	AwayScore   int    `json:"awayScore"`
	HomeScore   int    `json:"homeScore"`
	Inning      int    `json:"inning"`
	Half        string `json:"half"`
	AwayBatting bool   `json:"awayBatting"`
	HomeBatting bool   `json:"homeBatting"`
	Outs        int    `json:"outs"`
	OutDots     []bool `json:"outDots"`
	Locked      bool   `json:"locked"`

	Timer        string `json:"timer"`
	Elapsed      int64  `json:"elapsed"`
	TimerRunning bool   `json:"timerRunning"`

	Plays []PlayRow `json:"plays"`

	ThemeIndex int   `json:"themeIndex"`
	Theme      Theme `json:"theme"`

	Pitch         PitchCounter `json:"pitch"`
	PitchTotal    int          `json:"pitchTotal"`
	StrikePercent int          `json:"strikePercent"`

	WakeLock bool `json:"wakeLock"`
}

// View renders the session at the current clock time.
func (s *Session) View() View {
	g := s.game
	half := "TOP"
	if !g.IsTopHalf {
		half = "BOTTOM"
	}
	dots := make([]bool, OutsPerHalf)
	for i := range dots {
		dots[i] = i < g.Outs
	}
	rows := make([]PlayRow, 0, len(s.plays))
	for _, p := range s.plays {
		rows = append(rows, PlayRow{Text: p.Text, Meta: p.Meta()})
	}
	elapsed := s.Elapsed()
	return View{
		AwayLabel:     s.teams.Label(TeamAway),
		HomeLabel:     s.teams.Label(TeamHome),
		AwayScore:     g.AwayScore,
		HomeScore:     g.HomeScore,
		Inning:        g.Inning,
		Half:          half,
		AwayBatting:   g.IsTopHalf,
		HomeBatting:   !g.IsTopHalf,
		Outs:          g.Outs,
		OutDots:       dots,
		Locked:        g.AdvancePending,
		Timer:         FormatElapsed(elapsed),
		Elapsed:       elapsed,
		TimerRunning:  s.timer.IsRunning,
		Plays:         rows,
		ThemeIndex:    s.theme,
		Theme:         ThemeAt(s.theme),
		Pitch:         s.pitch,
		PitchTotal:    s.pitch.Total(),
		StrikePercent: s.pitch.StrikePercent(),
		WakeLock:      s.wakeLock,
	}
}
