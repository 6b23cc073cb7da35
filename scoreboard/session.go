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

import (
	"errors"
	"io/fs"
	"log"
	"time"
)

// Presenter receives a fresh View after every mutation.
type Presenter interface {
	Render(View)
}

// Session owns one game: its state, timer, play log and display settings.
// All mutation goes through its methods, and every mutation that changes
// something is followed by a full write of every key to the Store.
//
// A Session is not safe for concurrent use. Callers serialize access; the
// backend Hub does so with a single goroutine per session.
type Session struct {
	game     GameState
	timer    Timer
	plays    PlayLog
	theme    int
	teams    TeamNames
	pitch    PitchCounter
	wakeLock bool

	settle    time.Duration
	store     Store
	clock     Clock
	recap     *Recap
	presenter Presenter
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock replaces the wall clock.
func WithClock(c Clock) SessionOption {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRecap replaces the recap generator.
func WithRecap(r *Recap) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.recap = r
		}
	}
}

// WithSettleDelay sets the duration hint returned with the third out.
func WithSettleDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		if d >= 0 {
			s.settle = d
		}
	}
}

// WithPresenter attaches a presentation adapter.
func WithPresenter(p Presenter) SessionOption {
	return func(s *Session) {
		s.presenter = p
	}
}

// Open loads a session from store, using defaults for anything missing or
// unreadable. A nil store keeps everything in memory.
func Open(store Store, opts ...SessionOption) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{
		game:   NewGameState(),
		plays:  PlayLog{},
		pitch:  PitchCounter{Mode: PitchOff},
		settle: DefaultSettleDelay,
		store:  store,
		clock:  SystemClock{},
		recap:  NewRecap(nil),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load(KeyGame, &s.game)
	s.load(KeyLog, &s.plays)
	s.load(KeyTheme, &s.theme)
	s.load(KeyTimer, &s.timer)
	s.load(KeyWakeLock, &s.wakeLock)
	s.load(KeyPitch, &s.pitch)
	s.load(KeyTeamAway, &s.teams.Away)
	s.load(KeyTeamHome, &s.teams.Home)

	s.game.normalize()
	s.timer.normalize()
	s.pitch.normalize()
	if s.plays == nil {
		s.plays = PlayLog{}
	}
	if s.theme < 0 || s.theme >= len(Themes) {
		s.theme = 0
	}
	return s
}

func (s *Session) load(key string, v any) {
	err := s.store.Load(key, v)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	log.Printf("Warning: ignoring unreadable %q: %v", key, err)
}

// persist writes every key and renders. Write failures are logged; the
// in-memory state stays authoritative.
func (s *Session) persist() {
	blobs := []struct {
		key string
		v   any
	}{
		{KeyGame, s.game},
		{KeyLog, s.plays},
		{KeyTheme, s.theme},
		{KeyTimer, s.timer},
		{KeyWakeLock, s.wakeLock},
		{KeyPitch, s.pitch},
		{KeyTeamAway, s.teams.Away},
		{KeyTeamHome, s.teams.Home},
	}
	for _, b := range blobs {
		if err := s.store.Save(b.key, b.v); err != nil {
			log.Printf("Warning: failed to save %q: %v", b.key, err)
		}
	}
	s.render()
}

func (s *Session) render() {
	if s.presenter != nil {
		s.presenter.Render(s.View())
	}
}

// Game returns a copy of the game state.
func (s *Session) Game() GameState { return s.game }

// Timer returns a copy of the timer.
func (s *Session) Timer() Timer { return s.timer }

// Plays returns a copy of the play log, most recent first.
func (s *Session) Plays() PlayLog {
	out := make(PlayLog, len(s.plays))
	copy(out, s.plays)
	return out
}

// Teams returns the raw team names.
func (s *Session) Teams() TeamNames { return s.teams }

// ThemeIndex returns the index into Themes.
func (s *Session) ThemeIndex() int { return s.theme }

// Pitch returns the pitch counter.
func (s *Session) Pitch() PitchCounter { return s.pitch }

// WakeLock reports the screen wake-lock preference.
func (s *Session) WakeLock() bool { return s.wakeLock }

// SettleDelay is the hint returned when the third out is recorded.
func (s *Session) SettleDelay() time.Duration { return s.settle }

// AdjustScore changes a team's score, never below zero. Nothing is written
// when the score does not change.
func (s *Session) AdjustScore(team Team, delta int) bool {
	if !s.game.AdjustScore(team, delta) {
		return false
	}
	s.persist()
	return true
}

// RecordOut adds an out. On the third out the advance is locked in and the
// hint tells the caller to call CompleteHalfInningAdvance after Settle.
func (s *Session) RecordOut() (AdvanceHint, bool) {
	hint, ok := s.game.RecordOut(s.settle)
	if ok {
		s.persist()
	}
	return hint, ok
}

// RevokeOut removes an out.
func (s *Session) RevokeOut() bool {
	if !s.game.RevokeOut() {
		return false
	}
	s.persist()
	return true
}

// TapOut is the positional out control: the left third of the target
// revokes, the rest records. The whole control is inert while settling.
func (s *Session) TapOut(x, width float64) (AdvanceHint, bool) {
	if s.game.AdvancePending {
		return AdvanceHint{}, false
	}
	if x < width/3 {
		return AdvanceHint{}, s.RevokeOut()
	}
	return s.RecordOut()
}

// CompleteHalfInningAdvance finishes a pending advance: outs go to zero and
// the half-inning moves on, in one write.
func (s *Session) CompleteHalfInningAdvance() bool {
	if !s.game.CompleteHalfInningAdvance() {
		return false
	}
	s.persist()
	return true
}

// AdvanceInning moves the half-inning manually by direction (+1 or -1).
func (s *Session) AdvanceInning(direction int) bool {
	if !s.game.AdvanceInning(direction) {
		return false
	}
	s.persist()
	return true
}

// ToggleTimer starts or pauses the game clock.
func (s *Session) ToggleTimer() bool {
	s.timer.Toggle(s.clock.Now())
	s.persist()
	return s.timer.IsRunning
}

// ResetTimer stops and zeros the game clock. The caller is responsible for
// confirming with the user.
func (s *Session) ResetTimer() {
	s.timer.Reset()
	s.persist()
}

// Elapsed is the whole seconds on the game clock now.
func (s *Session) Elapsed() int64 {
	return s.timer.Elapsed(s.clock.Now())
}

// AddPlay validates the play form and prepends the play, stamped with the
// current half-inning. Validation failures change nothing.
func (s *Session) AddPlay(player, playType, location string) (PlayRecord, error) {
	text, err := DescribePlay(player, playType, location)
	if err != nil {
		return PlayRecord{}, err
	}
	s.plays.Record(text, s.game.Inning, s.game.IsTopHalf)
	s.persist()
	return s.plays[0], nil
}

// SetTeamName stores the free-text name of a team.
func (s *Session) SetTeamName(team Team, name string) {
	s.teams.Set(team, name)
	s.persist()
}

// CycleTheme moves to the next palette entry.
func (s *Session) CycleTheme() int {
	s.theme = NextTheme(s.theme)
	s.persist()
	return s.theme
}

// ToggleWakeLock flips the screen wake-lock preference.
func (s *Session) ToggleWakeLock() bool {
	s.wakeLock = !s.wakeLock
	s.persist()
	return s.wakeLock
}

// CyclePitchMode goes off, simple, advanced, off.
func (s *Session) CyclePitchMode() PitchMode {
	s.pitch.CycleMode()
	s.persist()
	return s.pitch.Mode
}

// AdjustPitch changes one pitch counter.
func (s *Session) AdjustPitch(counter string, delta int) error {
	if err := s.pitch.Adjust(counter, delta); err != nil {
		return err
	}
	s.persist()
	return nil
}

// Reset starts a new game. Every stored key is cleared, then the defaults
// are written back. The theme, wake-lock preference and pitch mode carry
// over; team names do not. The caller confirms with the user first.
func (s *Session) Reset() {
	if err := s.store.Clear(); err != nil {
		log.Printf("Warning: failed to clear store: %v", err)
	}
	s.game = NewGameState()
	s.plays.Clear()
	s.timer.Reset()
	s.pitch.clear()
	s.teams = TeamNames{}
	s.persist()
}

// Recap generates the narrative recap of the current game.
func (s *Session) Recap() string {
	return s.recap.Generate(s.teams.Label(TeamHome), s.teams.Label(TeamAway), s.game, s.plays)
}

// ShareLine is the terse one-line score.
func (s *Session) ShareLine() string {
	return ShareLine(s.teams.Label(TeamAway), s.teams.Label(TeamHome), s.game)
}
