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
	"strings"
)

// PlayType is the kind of play entered in the log form.
type PlayType string

// Play Types
const (
	PlayStrikeout  PlayType = "strikeout"
	PlayWalk       PlayType = "walk"
	PlayHitByPitch PlayType = "hbp"
	PlayGroundout  PlayType = "groundout"
	PlayPopout     PlayType = "popout"
	PlayFlyout     PlayType = "flyout"
	PlayLineout    PlayType = "lineout"
	PlayHomerun    PlayType = "homerun"
	PlaySingle     PlayType = "single"
	PlayDouble     PlayType = "double"
	PlayTriple     PlayType = "triple"
)

// PlayTypes lists the play types in form order.
var PlayTypes = []PlayType{
	PlayStrikeout, PlayWalk, PlayHitByPitch,
	PlayGroundout, PlayPopout, PlayFlyout, PlayLineout,
	PlayHomerun, PlaySingle, PlayDouble, PlayTriple,
}

// playTemplates holds the sentence for each play. %[1]s is the player,
// %[2]s the location.
var playTemplates = map[PlayType]string{
	PlayStrikeout:  "%[1]s struck out.",
	PlayWalk:       "%[1]s walked.",
	PlayHitByPitch: "%[1]s was hit by a pitch.",
	PlayGroundout:  "%[1]s grounded out to %[2]s.",
	PlayPopout:     "%[1]s popped out to %[2]s.",
	PlayFlyout:     "%[1]s flied out to %[2]s.",
	PlayLineout:    "%[1]s lined out to %[2]s.",
	PlayHomerun:    "%[1]s hit a homerun to %[2]s.",
	PlaySingle:     "%[1]s hit a single to %[2]s.",
	PlayDouble:     "%[1]s hit a double to %[2]s.",
	PlayTriple:     "%[1]s hit a triple to %[2]s.",
}

// ParsePlayType accepts the form values above. "hit-by-pitch" is accepted
// as an alias of "hbp".
func ParsePlayType(s string) (PlayType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", &ValidationError{Field: "playType", Err: ErrPlayTypeRequired}
	}
	if s == "hit-by-pitch" || s == "hitbypitch" {
		return PlayHitByPitch, nil
	}
	pt := PlayType(s)
	if _, ok := playTemplates[pt]; !ok {
		return "", &ValidationError{Field: "playType", Err: fmt.Errorf("%w: %q", ErrUnknownPlayType, s)}
	}
	return pt, nil
}

// NeedsLocation reports whether the play happens somewhere on the field.
func (pt PlayType) NeedsLocation() bool {
	switch pt {
	case PlayStrikeout, PlayWalk, PlayHitByPitch:
		return false
	}
	return true
}

// DescribePlay validates the log form and renders the play sentence.
func DescribePlay(player string, playType string, location string) (string, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return "", &ValidationError{Field: "player", Err: ErrPlayerRequired}
	}
	pt, err := ParsePlayType(playType)
	if err != nil {
		return "", err
	}
	if !pt.NeedsLocation() {
		return fmt.Sprintf(playTemplates[pt], player), nil
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return "", &ValidationError{Field: "location", Err: ErrLocationRequired}
	}
	return fmt.Sprintf(playTemplates[pt], player, location), nil
}
