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
	"time"
)

// Clock provides wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Timer accumulates game time across pauses and restarts. The start of the
// running interval is stored as an instant, not a counter, so a reload while
// running loses nothing.
type Timer struct {
	RunningSince       *int64 `json:"runningSinceEpochMillis"`
	AccumulatedSeconds int64  `json:"accumulatedSeconds"`
	IsRunning          bool   `json:"isRunning"`
}

// Toggle pauses a running timer, banking the whole seconds elapsed, or
// starts a paused one at now.
func (t *Timer) Toggle(now time.Time) {
	if t.IsRunning {
		t.AccumulatedSeconds += t.sinceStart(now)
		t.RunningSince = nil
		t.IsRunning = false
		return
	}
	ms := now.UnixMilli()
	t.RunningSince = &ms
	t.IsRunning = true
}

// Elapsed returns the whole seconds on the clock at now without mutating.
func (t *Timer) Elapsed(now time.Time) int64 {
	total := t.AccumulatedSeconds
	if t.IsRunning && t.RunningSince != nil {
		total += t.sinceStart(now)
	}
	return total
}

// Reset stops the timer and zeros it. Callers confirm with the user first.
func (t *Timer) Reset() {
	*t = Timer{}
}

func (t *Timer) sinceStart(now time.Time) int64 {
	if t.RunningSince == nil {
		return 0
	}
	d := now.UnixMilli() - *t.RunningSince
	if d < 0 {
		return 0
	}
	return d / 1000
}

func (t *Timer) normalize() {
	if t.AccumulatedSeconds < 0 {
		t.AccumulatedSeconds = 0
	}
	if t.IsRunning != (t.RunningSince != nil) {
		t.IsRunning = false
		t.RunningSince = nil
	}
}

// FormatElapsed renders seconds as HH:MM:SS. Hours are not capped.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
