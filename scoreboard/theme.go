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

import "strings"

// Theme is one entry of the fixed colour palette.
type Theme struct {
	Name       string `json:"name"`
	Background string `json:"bg"`
	Glass      string `json:"glass"`
	Accent     string `json:"accent"`
	Primary    string `json:"primary"`
	ButtonText string `json:"btnText"`
}

// Themes is the palette, indexed by the persisted theme index.
var Themes = []Theme{
	{"slate", "#1d2d44", "rgba(13, 19, 33, 0.7)", "#e6e4ce", "#748cab", "#fff"},
	{"ballpark", "#064e3b", "rgba(0, 0, 0, 0.4)", "#ecfdf5", "#10b981", "#fff"},
	{"sunset", "#2d0a31", "rgba(0, 0, 0, 0.3)", "#fb923c", "#f97316", "#fff"},
	{"neon", "#000000", "rgba(20, 20, 20, 0.8)", "#22d3ee", "#0891b2", "#fff"},
	{"umpire", "#0f172a", "rgba(255, 255, 255, 0.1)", "#ffffff", "#475569", "#fff"},
	{"diamond", "#451a03", "rgba(0, 0, 0, 0.4)", "#fde047", "#a16207", "#fff"},
	{"ocean", "#164e63", "rgba(8, 51, 68, 0.6)", "#cffafe", "#22d3ee", "#000"},
	{"retro", "#1e3a8a", "rgba(30, 58, 138, 0.5)", "#4ade80", "#166534", "#fff"},
	{"redzone", "#450a0a", "rgba(0, 0, 0, 0.4)", "#f87171", "#b91c1c", "#fff"},
	{"volt", "#171717", "rgba(0, 0, 0, 0.6)", "#bef264", "#65a30d", "#000"},
	{"royal", "#1e1b4b", "rgba(0, 0, 0, 0.3)", "#fbbf24", "#4338ca", "#fff"},
	{"cyber", "#2e1065", "rgba(0, 0, 0, 0.4)", "#f472b6", "#db2777", "#fff"},
	{"steel", "#262626", "rgba(255, 255, 255, 0.05)", "#fbbf24", "#525252", "#fff"},
}

// ThemeAt returns the palette entry for idx, falling back to the first.
func ThemeAt(idx int) Theme {
	if idx < 0 || idx >= len(Themes) {
		return Themes[0]
	}
	return Themes[idx]
}

// NextTheme cycles through the palette.
func NextTheme(idx int) int {
	if idx < 0 || idx >= len(Themes) {
		idx = 0
	}
	return (idx + 1) % len(Themes)
}

// TeamNames are the free-text names typed for each side.
type TeamNames struct {
	Away string `json:"away"`
	Home string `json:"home"`
}

// Label is the display name: upper-cased, or AWAY/HOME when blank.
func (n TeamNames) Label(team Team) string {
	raw, fallback := n.Away, "AWAY"
	if team == TeamHome {
		raw, fallback = n.Home, "HOME"
	}
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	return strings.ToUpper(raw)
}

// Set stores the raw name for a team.
func (n *TeamNames) Set(team Team, name string) {
	if team == TeamHome {
		n.Home = name
	} else {
		n.Away = name
	}
}
