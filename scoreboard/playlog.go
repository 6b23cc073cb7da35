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

// PlayRecord is one entry of the play-by-play log, stamped with the
// half-inning it was recorded in.
type PlayRecord struct {
	Text      string `json:"text"`
	Inning    int    `json:"inning"`
	IsTopHalf bool   `json:"isTopHalf"`
}

// Meta is the short half-inning tag shown next to a play, e.g. "T3".
func (p PlayRecord) Meta() string {
	if p.IsTopHalf {
		return fmt.Sprintf("T%d", p.Inning)
	}
	return fmt.Sprintf("B%d", p.Inning)
}

// PlayLog holds plays most recent first.
type PlayLog []PlayRecord

// Record prepends a play.
func (l *PlayLog) Record(text string, inning int, isTopHalf bool) {
	rec := PlayRecord{Text: text, Inning: inning, IsTopHalf: isTopHalf}
	*l = append(PlayLog{rec}, *l...)
}

// Clear empties the log.
func (l *PlayLog) Clear() {
	*l = PlayLog{}
}

// Highlights returns up to n of the most recent plays with non-blank text.
func (l PlayLog) Highlights(n int) []string {
	out := make([]string, 0, n)
	for _, p := range l {
		if len(out) >= n {
			break
		}
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		out = append(out, p.Text)
	}
	return out
}
