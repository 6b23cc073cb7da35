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

package backend

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

// uuidRegex is a regex for standard UUIDs (8-4-4-4-12 hex digits)
var uuidRegex = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)

// isValidUUID checks if the string is a valid UUID.
func isValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// Intent types
const (
	IntentScore       = "SCORE"
	IntentOut         = "OUT"
	IntentRevokeOut   = "REVOKE_OUT"
	IntentOutTap      = "OUT_TAP"
	IntentInning      = "INNING"
	IntentTimerToggle = "TIMER_TOGGLE"
	IntentTimerReset  = "TIMER_RESET"
	IntentAddPlay     = "ADD_PLAY"
	IntentTeamName    = "TEAM_NAME"
	IntentTheme       = "THEME"
	IntentWakeLock    = "WAKE_LOCK"
	IntentPitchMode   = "PITCH_MODE"
	IntentPitch       = "PITCH"
	IntentReset       = "RESET"
)

// Intent is one user action against a session. Only the fields of its type
// are read.
type Intent struct {
	Type      string  `json:"type"`
	Team      string  `json:"team,omitempty"`
	Delta     int     `json:"delta,omitempty"`
	Direction int     `json:"direction,omitempty"`
	X         float64 `json:"x,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Confirm   bool    `json:"confirm,omitempty"`
	Player    string  `json:"player,omitempty"`
	PlayType  string  `json:"playType,omitempty"`
	Location  string  `json:"location,omitempty"`
	Name      string  `json:"name,omitempty"`
	Counter   string  `json:"counter,omitempty"`
}

// DecodeIntent parses and validates an intent from raw JSON.
func DecodeIntent(raw []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(raw, &in); err != nil {
		return Intent{}, invalid("intent", fmt.Errorf("malformed intent JSON"))
	}
	return in, ValidateIntent(in)
}

func invalid(field string, err error) error {
	return &scoreboard.ValidationError{Field: field, Err: err}
}

// validateStringLen checks if the string length is within the limit.
func validateStringLen(s string, max int, name string) error {
	if len(s) > max {
		return invalid(name, fmt.Errorf("%s too long (max %d chars)", name, max))
	}
	return nil
}

// maxDelta bounds one score or pitch count adjustment.
const maxDelta = 100

func validateDelta(delta int) error {
	if delta < -maxDelta || delta > maxDelta {
		return invalid("delta", fmt.Errorf("delta must be within ±%d, got %d", maxDelta, delta))
	}
	return nil
}

// ValidateIntent checks the shape of an intent. Play descriptions are
// validated again by the session when they are applied.
func ValidateIntent(in Intent) error {
	switch in.Type {
	case IntentScore:
		if _, err := scoreboard.ParseTeam(in.Team); err != nil {
			return err
		}
		if in.Delta == 0 {
			return invalid("delta", fmt.Errorf("missing score delta"))
		}
		if err := validateDelta(in.Delta); err != nil {
			return err
		}
	case IntentInning:
		if in.Direction != 1 && in.Direction != -1 {
			return invalid("direction", fmt.Errorf("direction must be 1 or -1, got %d", in.Direction))
		}
	case IntentOutTap:
		if in.Width <= 0 {
			return invalid("width", fmt.Errorf("tap target width must be positive"))
		}
	case IntentTimerReset, IntentReset:
		if !in.Confirm {
			return invalid("confirm", scoreboard.ErrConfirmationRequired)
		}
	case IntentAddPlay:
		if err := validateStringLen(in.Player, 50, "player"); err != nil {
			return err
		}
		if err := validateStringLen(in.Location, 50, "location"); err != nil {
			return err
		}
	case IntentTeamName:
		if _, err := scoreboard.ParseTeam(in.Team); err != nil {
			return err
		}
		if err := validateStringLen(in.Name, 30, "name"); err != nil {
			return err
		}
	case IntentPitch:
		switch in.Counter {
		case scoreboard.CounterSimple, scoreboard.CounterBalls, scoreboard.CounterStrikes:
		default:
			return invalid("counter", fmt.Errorf("unknown pitch counter %q", in.Counter))
		}
		if err := validateDelta(in.Delta); err != nil {
			return err
		}
	case IntentOut, IntentRevokeOut, IntentTimerToggle, IntentTheme, IntentWakeLock, IntentPitchMode:
	case "":
		return invalid("type", fmt.Errorf("missing intent type"))
	default:
		return invalid("type", fmt.Errorf("unknown intent type %q", in.Type))
	}
	return nil
}

// applyIntent runs a validated intent against the session. It must be
// called from the goroutine that owns the session.
func applyIntent(s *scoreboard.Session, in Intent) (changed bool, hint scoreboard.AdvanceHint, err error) {
	if err := ValidateIntent(in); err != nil {
		return false, hint, err
	}
	switch in.Type {
	case IntentScore:
		team, _ := scoreboard.ParseTeam(in.Team)
		changed = s.AdjustScore(team, in.Delta)
	case IntentOut:
		hint, changed = s.RecordOut()
	case IntentRevokeOut:
		changed = s.RevokeOut()
	case IntentOutTap:
		hint, changed = s.TapOut(in.X, in.Width)
	case IntentInning:
		changed = s.AdvanceInning(in.Direction)
	case IntentTimerToggle:
		s.ToggleTimer()
		changed = true
	case IntentTimerReset:
		s.ResetTimer()
		changed = true
	case IntentAddPlay:
		if _, err := s.AddPlay(in.Player, in.PlayType, in.Location); err != nil {
			return false, hint, err
		}
		changed = true
	case IntentTeamName:
		team, _ := scoreboard.ParseTeam(in.Team)
		s.SetTeamName(team, in.Name)
		changed = true
	case IntentTheme:
		s.CycleTheme()
		changed = true
	case IntentWakeLock:
		s.ToggleWakeLock()
		changed = true
	case IntentPitchMode:
		s.CyclePitchMode()
		changed = true
	case IntentPitch:
		if err := s.AdjustPitch(in.Counter, in.Delta); err != nil {
			return false, hint, err
		}
		changed = true
	case IntentReset:
		s.Reset()
		changed = true
	}
	return changed, hint, nil
}
