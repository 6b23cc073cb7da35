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
	"errors"
	"testing"
	"time"
)

func TestHistogram_Add(t *testing.T) {
	var h Histogram
	h.Add(10 * time.Millisecond)
	h.Add(120 * time.Millisecond)
	h.Add(time.Hour)
	h.Add(-time.Second)

	if h.Count != 4 {
		t.Errorf("Expected 4 samples, got %d", h.Count)
	}
	if h.Buckets[0] != 2 || h.Buckets[2] != 1 || h.Buckets[LatencyBuckets-1] != 1 {
		t.Errorf("Unexpected buckets: 0=%d 2=%d last=%d", h.Buckets[0], h.Buckets[2], h.Buckets[LatencyBuckets-1])
	}

	var merged Histogram
	merged.Merge(&h)
	merged.Merge(nil)
	if merged.Count != h.Count || merged.Sum != h.Sum {
		t.Errorf("Expected merged copy of %+v, got %+v", h, merged)
	}
}

func TestRingBuffer_AddAndGet(t *testing.T) {
	rb := NewRingBuffer[float64](ResolutionConfig{Name: "1m", Resolution: time.Minute, Buckets: 3})
	base := int64(1000020)

	rb.Add(base, 1)
	rb.Add(base+30, 2) // same minute, replaces
	points := rb.GetPoints()
	if len(points) != 1 || points[0].Value != 2 {
		t.Fatalf("Expected one point of 2, got %+v", points)
	}
	if points[0].Timestamp%60 != 0 {
		t.Errorf("Expected aligned timestamp, got %d", points[0].Timestamp)
	}

	rb.Add(base+60, 3)
	rb.Add(base+120, 4)
	rb.Add(base+180, 5) // wraps over the oldest point
	points = rb.GetPoints()
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}
	for i, want := range []float64{3, 4, 5} {
		if points[i].Value != want {
			t.Errorf("points[%d]: expected %v, got %v", i, want, points[i].Value)
		}
	}
}

func TestMetricSeries_IngestSums(t *testing.T) {
	ms := NewMetricSeries("intents")
	ts := int64(1800000)
	ms.Ingest(ts, 1)
	ms.Ingest(ts+1, 1)
	ms.Ingest(ts+2, 1)
	for name, buf := range ms.Buffers {
		points := buf.GetPoints()
		if len(points) != 1 || points[0].Value != 3 {
			t.Errorf("%s: expected a single bucket of 3, got %+v", name, points)
		}
	}
}

func TestIntentMetrics_Snapshot(t *testing.T) {
	m := NewIntentMetrics()
	m.now = func() time.Time { return time.Unix(1800000, 0) }

	m.Record(IntentScore, 5*time.Millisecond, nil)
	m.Record(IntentScore, 7*time.Millisecond, nil)
	m.Record(IntentOut, time.Millisecond, nil)
	m.Record(IntentAddPlay, time.Millisecond, errors.New("player name is required"))
	m.SocketDelta(2)
	m.SocketDelta(-1)

	snap := m.Snapshot()
	if snap.ActiveWS != 1 {
		t.Errorf("Expected 1 socket, got %d", snap.ActiveWS)
	}
	want := []IntentStat{
		{Type: IntentAddPlay, Applied: 0, Rejected: 1},
		{Type: IntentOut, Applied: 1},
		{Type: IntentScore, Applied: 2},
	}
	if len(snap.Intents) != len(want) {
		t.Fatalf("Expected %d rows, got %+v", len(want), snap.Intents)
	}
	for i, w := range want {
		got := snap.Intents[i]
		if got.Type != w.Type || got.Applied != w.Applied || got.Rejected != w.Rejected {
			t.Errorf("row %d: expected %+v, got %+v", i, w, got)
		}
	}
	if snap.Intents[2].Latency.Count != 2 {
		t.Errorf("Expected 2 latency samples, got %d", snap.Intents[2].Latency.Count)
	}
	if pts := snap.Rate["1m"]; len(pts) != 1 || pts[0].Value != 3 {
		t.Errorf("Expected 3 applied intents in the current minute, got %+v", pts)
	}
}

func TestIntentMetrics_NilSafe(t *testing.T) {
	var m *IntentMetrics
	m.Record(IntentOut, time.Millisecond, nil)
	m.SocketDelta(1)
}
