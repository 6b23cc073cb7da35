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
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// firstChoice is a Recap that always takes the first template.
func firstChoice() *Recap {
	rc := NewRecap(nil)
	rc.pick = func(int) int { return 0 }
	return rc
}

// verifyGolden compares actual with testdata/<name>. UPDATE_GOLDENS=true
// rewrites the file instead.
func verifyGolden(t *testing.T, name, actual string) {
	t.Helper()
	actual = strings.TrimSpace(actual)
	goldenPath := filepath.Join("testdata", name)

	if os.Getenv("UPDATE_GOLDENS") == "true" {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("Failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(actual+"\n"), 0644); err != nil {
			t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expectedBytes, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v\nActual Content:\n%s", goldenPath, err, actual)
	}
	expected := strings.TrimSpace(string(expectedBytes))
	if actual != expected {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expected),
			B:        difflib.SplitLines(actual),
			FromFile: "Expected",
			ToFile:   "Actual",
			Context:  3,
		})
		t.Errorf("Recap mismatch for %s:\n%s", name, diff)
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd",
		101: "101st", 110: "110th", 111: "111th", 112: "112th",
	}
	for n, want := range tests {
		if got := Ordinal(n); got != want {
			t.Errorf("Ordinal(%d): expected %q, got %q", n, want, got)
		}
	}
}

func TestScoreBucket(t *testing.T) {
	tests := []struct {
		diff int
		want situation
	}{
		{0, sitTie}, {1, sitOneRun}, {2, sitTwoRun}, {3, sitBreathingRoom},
		{4, sitBreathingRoom}, {5, sitBlowout}, {17, sitBlowout},
	}
	for _, tc := range tests {
		if got := scoreBucket(tc.diff); got != tc.want {
			t.Errorf("scoreBucket(%d): expected %s, got %s", tc.diff, tc.want, got)
		}
	}
}

func TestRecapTemplates_AllSituationsPopulated(t *testing.T) {
	f := recapFacts{
		Home: "SOX", Away: "CUBS", HomeScore: 7, AwayScore: 2,
		Winner: "SOX", Loser: "CUBS", WinScore: 7, LoseScore: 2, Diff: 5,
		Half: "top", Inning: "3rd",
	}
	for sit, choices := range recapTemplates {
		if len(choices) < 3 {
			t.Errorf("%s: expected several phrasings, got %d", sit, len(choices))
		}
		for i, tmpl := range choices {
			if out := tmpl(f); strings.TrimSpace(out) == "" || strings.Contains(out, "%!") {
				t.Errorf("%s[%d]: bad output %q", sit, i, out)
			}
		}
	}
}

func TestRecap_TieContentIndependentOfPhrasing(t *testing.T) {
	g := GameState{AwayScore: 4, HomeScore: 4, Inning: 5, IsTopHalf: true}
	for i := range recapTemplates[sitTie] {
		rc := NewRecap(nil)
		rc.pick = func(n int) int { return i % n }
		out := rc.Generate("SOX", "CUBS", g, nil)
		first := strings.SplitN(out, "\n", 2)[0]
		if !strings.Contains(first, "4 to 4") {
			t.Errorf("tie[%d]: expected both scores of 4 in %q", i, first)
		}
	}

	for seed := uint64(0); seed < 20; seed++ {
		out := NewRecap(rand.New(rand.NewPCG(seed, seed))).Generate("SOX", "CUBS", g, nil)
		if !strings.Contains(out, "The scoreboard shows 4 to 4.") {
			t.Errorf("seed %d: missing tied score line in %q", seed, out)
		}
	}
}

func TestRecap_LeaderNamed(t *testing.T) {
	g := GameState{AwayScore: 9, HomeScore: 1, Inning: 7, IsTopHalf: false, Outs: 1}
	for seed := uint64(0); seed < 20; seed++ {
		out := NewRecap(rand.New(rand.NewPCG(seed, 1))).Generate("SOX", "CUBS", g, nil)
		if !strings.Contains(out, "The scoreboard shows 9 to 1.") {
			t.Errorf("seed %d: missing score line in %q", seed, out)
		}
		if !strings.Contains(out, "CUBS") {
			t.Errorf("seed %d: leader not named in %q", seed, out)
		}
		if !strings.Contains(out, "7th") {
			t.Errorf("seed %d: inning not named in %q", seed, out)
		}
	}
}

func TestRecap_DoesNotMutate(t *testing.T) {
	g := GameState{AwayScore: 1, HomeScore: 2, Inning: 3, Outs: 2}
	plays := PlayLog{{Text: "Ruth struck out.", Inning: 3}}
	before := g
	NewRecap(nil).Generate("H", "A", g, plays)
	if g != before || len(plays) != 1 {
		t.Error("Generate mutated its input")
	}
}

func TestRecap_Golden(t *testing.T) {
	var plays PlayLog
	for _, text := range []string{
		"Kim struck out.",
		"Lee walked.",
		"Ortiz hit a double to left field.",
		"",
		"Diaz flied out to center field.",
		"Park hit a homerun to right field.",
	} {
		plays.Record(text, 4, false)
	}

	tests := []struct {
		golden string
		game   GameState
		plays  PlayLog
	}{
		{"recap_two_run.golden", GameState{AwayScore: 3, HomeScore: 5, Inning: 4, IsTopHalf: false, Outs: 2}, plays},
		{"recap_quiet_tie.golden", NewGameState(), nil},
		{"recap_side_retired.golden", GameState{AwayScore: 8, HomeScore: 1, Inning: 12, IsTopHalf: true, Outs: 3, AdvancePending: true}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.golden, func(t *testing.T) {
			verifyGolden(t, tc.golden, firstChoice().Generate("SOX", "CUBS", tc.game, tc.plays))
		})
	}
}
