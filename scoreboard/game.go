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
	"fmt"
	"math"
	"strings"
	"time"
)

// Team identifies one side of the scoreboard.
type Team string

const (
	TeamAway Team = "away"
	TeamHome Team = "home"
)

// ParseTeam accepts "away" or "home" in any case.
func ParseTeam(s string) (Team, error) {
	switch Team(strings.ToLower(strings.TrimSpace(s))) {
	case TeamAway:
		return TeamAway, nil
	case TeamHome:
		return TeamHome, nil
	}
	return "", &ValidationError{Field: "team", Err: fmt.Errorf("%w: %q", ErrUnknownTeam, s)}
}

const (
	// OutsPerHalf is the number of outs that retires the side.
	OutsPerHalf = 3

	// DefaultSettleDelay is how long the half-inning advance stays locked
	// before CompleteHalfInningAdvance is expected. It matches the three
	// staggered dot clears (600ms, then 0/200/400ms, then 300ms).
	DefaultSettleDelay = 1300 * time.Millisecond
)

// GameState is the canonical score, inning and out count of a game.
type GameState struct {
	AwayScore int  `json:"awayScore"`
	HomeScore int  `json:"homeScore"`
	Inning    int  `json:"inning"`
	IsTopHalf bool `json:"isTopHalf"`
	Outs      int  `json:"outs"`

	// AdvancePending is set while the third out is settling. It is the
	// lock that blocks out and inning changes until the advance completes.
	AdvancePending bool `json:"advancePending,omitempty"`
}

// NewGameState returns a game at its defaults: 0-0, top of the 1st, no outs.
func NewGameState() GameState {
	return GameState{Inning: 1, IsTopHalf: true}
}

// AdvanceHint tells the presentation layer that a half-inning advance has
// been scheduled and how long it may animate before completing it.
type AdvanceHint struct {
	Pending bool          `json:"pending"`
	Settle  time.Duration `json:"-"`
}

// Score returns the score of the given team.
func (g *GameState) Score(team Team) int {
	if team == TeamHome {
		return g.HomeScore
	}
	return g.AwayScore
}

// AdjustScore adds delta to a team's score, clamping at zero and saturating
// at math.MaxInt. It reports whether the score actually changed.
func (g *GameState) AdjustScore(team Team, delta int) bool {
	cur := g.Score(team)
	next := math.MaxInt
	if delta <= 0 || cur <= math.MaxInt-delta {
		next = max(0, cur+delta)
	}
	if next == cur {
		return false
	}
	if team == TeamHome {
		g.HomeScore = next
	} else {
		g.AwayScore = next
	}
	return true
}

// RecordOut adds an out. When the third out is reached the advance lock is
// taken and the returned hint is pending; the caller must eventually call
// CompleteHalfInningAdvance. It is a no-op while locked or at three outs.
func (g *GameState) RecordOut(settle time.Duration) (AdvanceHint, bool) {
	if g.AdvancePending || g.Outs >= OutsPerHalf {
		return AdvanceHint{}, false
	}
	g.Outs++
	if g.Outs == OutsPerHalf {
		g.AdvancePending = true
		return AdvanceHint{Pending: true, Settle: settle}, true
	}
	return AdvanceHint{}, true
}

// RevokeOut removes an out. It is blocked while the advance is settling.
func (g *GameState) RevokeOut() bool {
	if g.AdvancePending || g.Outs == 0 {
		return false
	}
	g.Outs--
	return true
}

// CompleteHalfInningAdvance resets outs and moves to the next half-inning in
// one step. It only applies while the advance lock is held.
func (g *GameState) CompleteHalfInningAdvance() bool {
	if !g.AdvancePending {
		return false
	}
	g.Outs = 0
	g.AdvancePending = false
	g.nextHalf()
	return true
}

// AdvanceInning is the manual half-inning override. direction > 0 moves
// forward, direction < 0 moves back but never below the top of the 1st.
func (g *GameState) AdvanceInning(direction int) bool {
	if g.AdvancePending {
		return false
	}
	switch {
	case direction > 0:
		g.nextHalf()
		return true
	case direction < 0:
		if !g.IsTopHalf {
			g.IsTopHalf = true
			return true
		}
		if g.Inning > 1 {
			g.IsTopHalf = false
			g.Inning--
			return true
		}
	}
	return false
}

func (g *GameState) nextHalf() {
	if g.IsTopHalf {
		g.IsTopHalf = false
		return
	}
	g.IsTopHalf = true
	g.Inning++
}

// HalfName is "top" or "bottom".
func (g *GameState) HalfName() string {
	if g.IsTopHalf {
		return "top"
	}
	return "bottom"
}

// normalize repairs a state read from storage. A stored third out is
// resolved immediately since nobody is left to finish the settle sequence.
func (g *GameState) normalize() {
	g.AwayScore = max(0, g.AwayScore)
	g.HomeScore = max(0, g.HomeScore)
	if g.Inning < 1 {
		g.Inning = 1
	}
	g.Outs = min(max(0, g.Outs), OutsPerHalf)
	if g.Outs == OutsPerHalf {
		g.AdvancePending = true
		g.CompleteHalfInningAdvance()
	}
	g.AdvancePending = false
}
