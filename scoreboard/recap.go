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
	"math/rand/v2"
	"strings"
)

// DefaultHighlights is how many recent plays a recap lists.
const DefaultHighlights = 4

// situation keys the phrasing table. Every key maps to a set of
// interchangeable templates; the content is fixed by the key, the wording is
// a uniform draw.
type situation string

const (
	sitTie            situation = "tie"
	sitOneRun         situation = "one-run"
	sitTwoRun         situation = "two-run"
	sitBreathingRoom  situation = "breathing-room"
	sitBlowout        situation = "blowout"
	sitHighlightIntro situation = "highlight-intro"
	sitQuiet          situation = "quiet"
	sitNoOuts         situation = "no-outs"
	sitOneOut         situation = "one-out"
	sitTwoOuts        situation = "two-outs"
	sitSideRetired    situation = "side-retired"
	sitCloser         situation = "closer"
)

// recapFacts is everything a template may mention.
type recapFacts struct {
	Home, Away          string
	HomeScore           int
	AwayScore           int
	Winner, Loser       string
	WinScore, LoseScore int
	Diff                int
	Half                string
	Inning              string
}

type template func(f recapFacts) string

// scoreBucket picks the framing for the run differential.
func scoreBucket(diff int) situation {
	switch {
	case diff == 0:
		return sitTie
	case diff == 1:
		return sitOneRun
	case diff == 2:
		return sitTwoRun
	case diff <= 4:
		return sitBreathingRoom
	}
	return sitBlowout
}

// outsBucket picks the situational close for the out count.
func outsBucket(outs int) situation {
	switch outs {
	case 0:
		return sitNoOuts
	case 1:
		return sitOneOut
	case 2:
		return sitTwoOuts
	}
	return sitSideRetired
}

var recapTemplates = map[situation][]template{
	sitTie: {
		func(f recapFacts) string {
			return fmt.Sprintf("Folks, we've got ourselves a deadlock. %s and %s are tied at %d runs apiece.", f.Home, f.Away, f.HomeScore)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("This one's a real seesaw battle! Things are knotted up at %d.", f.HomeScore)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("It's all square here. Neither side is giving an inch with the score at %d to %d.", f.HomeScore, f.AwayScore)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("We're in the thick of a classic pitcher's duel, tied up at %d.", f.HomeScore)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("A high-tension stalemate! Both squads have put up %d runs so far.", f.HomeScore)
		},
	},
	sitOneRun: {
		func(f recapFacts) string {
			return fmt.Sprintf("Talk about a close one! The %s are squeaking by the %s by just a run.", f.Winner, f.Loser)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("It's a nail-biter! The %s are clinging to a one-run lead.", f.Winner)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("Just a sliver of daylight! The %s lead %s by a single run.", f.Winner, f.Loser)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("The tension is palpable as the %s hold onto a slim 1-run advantage.", f.Winner)
		},
	},
	sitTwoRun: {
		func(f recapFacts) string {
			return fmt.Sprintf("The %s are holding a slight advantage, up by a couple of runs.", f.Winner)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("A two-run cushion for the %s as they lead the %s.", f.Winner, f.Loser)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("The %s are up by two, but this game is far from over.", f.Winner)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("Two runs separate these teams, with the %s currently in front.", f.Winner)
		},
	},
	sitBreathingRoom: {
		func(f recapFacts) string {
			return fmt.Sprintf("The %s have a bit of breathing room, leading by %d.", f.Winner, f.Diff)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("A solid advantage for the %s, they're in control of this contest.", f.Winner)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("The %s are extending their lead, now up by %d runs.", f.Winner, f.Diff)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("The %s have some work to do, trailing the %s by %d.", f.Loser, f.Winner, f.Diff)
		},
	},
	sitBlowout: {
		func(f recapFacts) string {
			return fmt.Sprintf("And it's a blowout! The %s are dominating, leading by a whopping %d runs.", f.Winner, f.Diff)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("This one's getting out of hand! The %s are crushing the %s.", f.Winner, f.Loser)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("It's a lopsided affair! The %s have a commanding %d-run lead.", f.Winner, f.Diff)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("The %s are absolutely dismantling the competition today.", f.Winner)
		},
	},
	sitHighlightIntro: {
		literal("Alright, let's recap some of the action:"),
		literal("Here's a look at the key moments so far:"),
		literal("Some significant plays to report:"),
		literal("The highlight reel is starting to fill up:"),
		literal("Looking back at the recent plays:"),
	},
	sitQuiet: {
		literal("Things have been pretty quiet on the stat sheet, with minimal highlights to report."),
		literal("Not much has made the play log yet, so the scoreboard tells the story."),
		literal("No highlights logged so far, it's been all grind out there."),
	},
	sitNoOuts: {
		func(f recapFacts) string {
			return fmt.Sprintf("We're now in the %s of the %s, and the inning's just getting started with no outs.", f.Half, f.Inning)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("Fresh inning here, %s of the %s, with a clean slate and no outs.", f.Half, f.Inning)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("The %s of the %s is underway, nobody out yet.", f.Half, f.Inning)
		},
	},
	sitOneOut: {
		func(f recapFacts) string {
			return fmt.Sprintf("There's one out recorded in the %s of the %s.", f.Half, f.Inning)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("One down in the %s of the %s, as the defense looks for two more.", f.Half, f.Inning)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("The %s of the %s continues with one away.", f.Half, f.Inning)
		},
	},
	sitTwoOuts: {
		func(f recapFacts) string {
			return fmt.Sprintf("Two down, one to go in the %s of the %s.", f.Half, f.Inning)
		},
		func(f recapFacts) string {
			return fmt.Sprintf("We're down to the final out of the %s in the %s inning.", f.Half, f.Inning)
		},
		func(f recapFacts) string {
			offense := f.Winner
			if offense == "" {
				offense = "the offense"
			}
			return fmt.Sprintf("Two outs on the board, %s is looking for a two-out rally.", offense)
		},
	},
	sitSideRetired: {
		literal("And that's the side retired! Time for a change."),
		func(f recapFacts) string {
			return fmt.Sprintf("That makes three away in the %s of the %s. Time for a change.", f.Half, f.Inning)
		},
		literal("That's three outs, and the teams are swapping sides."),
	},
	sitCloser: {
		literal("Stay tuned, there's plenty of baseball left to be played!"),
		literal("Anything can happen in this game."),
		func(f recapFacts) string {
			trailing := f.Loser
			if trailing == "" {
				trailing = "trailing side"
			}
			return fmt.Sprintf("We'll see if the %s can mount a comeback.", trailing)
		},
		literal("What a contest we have on our hands today!"),
		literal("It's a beautiful day for baseball, and this game is proving why."),
	},
}

func literal(s string) template {
	return func(recapFacts) string { return s }
}

// Recap renders game state and the play log as a short broadcast-style
// narrative. Its output depends on the state for content and on the random
// source for wording only; it never mutates what it reads.
type Recap struct {
	// MaxHighlights caps the number of plays listed.
	MaxHighlights int

	pick      func(n int) int
	templates map[situation][]template
}

// NewRecap returns a generator drawing from r, or from the global source
// when r is nil.
func NewRecap(r *rand.Rand) *Recap {
	pick := rand.IntN
	if r != nil {
		pick = r.IntN
	}
	return &Recap{
		MaxHighlights: DefaultHighlights,
		pick:          pick,
		templates:     recapTemplates,
	}
}

func (rc *Recap) say(sit situation, f recapFacts) string {
	choices := rc.templates[sit]
	return choices[rc.pick(len(choices))](f)
}

// Generate writes the recap for the given team labels, state and log.
func (rc *Recap) Generate(home, away string, g GameState, plays PlayLog) string {
	f := recapFacts{
		Home:      home,
		Away:      away,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Diff:      abs(g.HomeScore - g.AwayScore),
		Half:      g.HalfName(),
		Inning:    Ordinal(g.Inning),
	}
	switch {
	case g.HomeScore > g.AwayScore:
		f.Winner, f.Loser, f.WinScore, f.LoseScore = home, away, g.HomeScore, g.AwayScore
	case g.AwayScore > g.HomeScore:
		f.Winner, f.Loser, f.WinScore, f.LoseScore = away, home, g.AwayScore, g.HomeScore
	default:
		f.WinScore, f.LoseScore = g.HomeScore, g.AwayScore
	}

	var b strings.Builder

	b.WriteString(rc.say(scoreBucket(f.Diff), f))
	fmt.Fprintf(&b, " The scoreboard shows %d to %d.\n", f.WinScore, f.LoseScore)

	limit := rc.MaxHighlights
	if limit <= 0 {
		limit = DefaultHighlights
	}
	if highlights := plays.Highlights(limit); len(highlights) > 0 {
		b.WriteString("\n" + rc.say(sitHighlightIntro, f) + "\n")
		for _, h := range highlights {
			b.WriteString(" - " + h + "\n")
		}
	} else {
		b.WriteString("\n" + rc.say(sitQuiet, f) + "\n")
	}

	outs := g.Outs
	if g.AdvancePending {
		outs = OutsPerHalf
	}
	b.WriteString("\n" + rc.say(outsBucket(outs), f))
	b.WriteString(" " + rc.say(sitCloser, f))

	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
