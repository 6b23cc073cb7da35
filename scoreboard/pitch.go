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
)

// PitchMode selects how the pitch counter is shown.
type PitchMode string

const (
	PitchOff      PitchMode = "off"
	PitchSimple   PitchMode = "simple"
	PitchAdvanced PitchMode = "advanced"
)

// Pitch counters
const (
	CounterSimple  = "simple"
	CounterBalls   = "balls"
	CounterStrikes = "strikes"
)

// PitchCounter tracks pitches thrown, either as one tally or as balls and
// strikes.
type PitchCounter struct {
	Mode    PitchMode `json:"mode"`
	Simple  int       `json:"simple"`
	Balls   int       `json:"balls"`
	Strikes int       `json:"strikes"`
}

// CycleMode goes off, simple, advanced, off.
func (p *PitchCounter) CycleMode() {
	switch p.Mode {
	case PitchOff, "":
		p.Mode = PitchSimple
	case PitchSimple:
		p.Mode = PitchAdvanced
	default:
		p.Mode = PitchOff
	}
}

// Adjust adds delta to a counter with a floor at zero.
func (p *PitchCounter) Adjust(counter string, delta int) error {
	var c *int
	switch counter {
	case CounterSimple:
		c = &p.Simple
	case CounterBalls:
		c = &p.Balls
	case CounterStrikes:
		c = &p.Strikes
	default:
		return &ValidationError{Field: "counter", Err: fmt.Errorf("unknown pitch counter %q", counter)}
	}
	*c = max(0, *c+delta)
	return nil
}

// Total is balls plus strikes.
func (p PitchCounter) Total() int {
	return p.Balls + p.Strikes
}

// StrikePercent is the rounded share of strikes, 0 with no pitches.
func (p PitchCounter) StrikePercent() int {
	total := p.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Strikes) / float64(total) * 100))
}

// clear zeros the counts but keeps the mode.
func (p *PitchCounter) clear() {
	*p = PitchCounter{Mode: p.Mode}
}

func (p *PitchCounter) normalize() {
	switch p.Mode {
	case PitchOff, PitchSimple, PitchAdvanced:
	default:
		p.Mode = PitchOff
	}
	p.Simple = max(0, p.Simple)
	p.Balls = max(0, p.Balls)
	p.Strikes = max(0, p.Strikes)
}
