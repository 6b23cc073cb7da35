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
	"sort"
	"sync"
	"time"
)

const LatencyBuckets = 101
const LatencyBucketSize = 50 * time.Millisecond

// Histogram counts intent latencies in fixed 50ms buckets. The last bucket
// collects everything slower.
type Histogram struct {
	Buckets [LatencyBuckets]uint64 `json:"b2"`
	Count   uint64                 `json:"c"`
	Sum     float64                `json:"s"` // Sum of durations in milliseconds
}

func (h *Histogram) Add(d time.Duration) {
	if d < 0 {
		d = 0
	}
	idx := int(d / LatencyBucketSize)
	if idx >= LatencyBuckets {
		idx = LatencyBuckets - 1
	}
	h.Buckets[idx]++
	h.Count++
	h.Sum += float64(d.Microseconds()) / 1000
}

func (h *Histogram) Merge(other *Histogram) {
	if other == nil {
		return
	}
	for i := 0; i < LatencyBuckets; i++ {
		h.Buckets[i] += other.Buckets[i]
	}
	h.Count += other.Count
	h.Sum += other.Sum
}

// ResolutionConfig defines the policy for a single ring of buckets.
type ResolutionConfig struct {
	Name       string        `json:"name"`
	Resolution time.Duration `json:"resolution"`
	Buckets    int           `json:"buckets"`
}

var DefaultResolutions = []ResolutionConfig{
	{"1m", 1 * time.Minute, 120},
	{"15m", 15 * time.Minute, 96},
	{"1h", 1 * time.Hour, 168},
}

// Point represents a single data point in a time series.
type Point[T any] struct {
	Timestamp int64 `json:"t"`
	Value     T     `json:"v"`
}

// RingBuffer is a fixed-size circular buffer for storing time series data.
type RingBuffer[T any] struct {
	Config ResolutionConfig `json:"config"`
	Data   []Point[T]       `json:"data"`
	Head   int              `json:"head"` // Points to the *next* write position
}

func NewRingBuffer[T any](cfg ResolutionConfig) *RingBuffer[T] {
	return &RingBuffer[T]{
		Config: cfg,
		Data:   make([]Point[T], cfg.Buckets),
	}
}

func (rb *RingBuffer[T]) align(timestamp int64) int64 {
	resSec := int64(rb.Config.Resolution.Seconds())
	return (timestamp / resSec) * resSec
}

// last returns the most recent point, if it falls in the same bucket as
// timestamp.
func (rb *RingBuffer[T]) last(timestamp int64) *Point[T] {
	prevIdx := (rb.Head - 1 + len(rb.Data)) % len(rb.Data)
	if rb.Data[prevIdx].Timestamp == rb.align(timestamp) {
		return &rb.Data[prevIdx]
	}
	return nil
}

// Add appends a point, replacing the newest one when it is in the same bucket.
func (rb *RingBuffer[T]) Add(timestamp int64, value T) {
	if p := rb.last(timestamp); p != nil {
		p.Value = value
		return
	}
	rb.Data[rb.Head] = Point[T]{Timestamp: rb.align(timestamp), Value: value}
	rb.Head = (rb.Head + 1) % len(rb.Data)
}

// GetPoints returns the data points sorted by time.
func (rb *RingBuffer[T]) GetPoints() []Point[T] {
	points := make([]Point[T], 0, len(rb.Data))
	for i := 0; i < len(rb.Data); i++ {
		idx := (rb.Head + i) % len(rb.Data)
		if rb.Data[idx].Timestamp > 0 {
			points = append(points, rb.Data[idx])
		}
	}
	return points
}

// MetricSeries sums a counter at every resolution.
type MetricSeries struct {
	Name    string                          `json:"name"`
	Buffers map[string]*RingBuffer[float64] `json:"buffers"`
}

func NewMetricSeries(name string) *MetricSeries {
	buffers := make(map[string]*RingBuffer[float64])
	for _, cfg := range DefaultResolutions {
		buffers[cfg.Name] = NewRingBuffer[float64](cfg)
	}
	return &MetricSeries{Name: name, Buffers: buffers}
}

func (ms *MetricSeries) Ingest(timestamp int64, value float64) {
	for _, buf := range ms.Buffers {
		if p := buf.last(timestamp); p != nil {
			p.Value += value
			continue
		}
		buf.Add(timestamp, value)
	}
}

// IntentMetrics records how many intents of each type were applied, how
// many were rejected, and how long they took.
type IntentMetrics struct {
	mu       sync.Mutex
	counts   map[string]uint64
	rejected map[string]uint64
	latency  map[string]*Histogram
	rate     *MetricSeries
	sockets  int
	now      func() time.Time
}

func NewIntentMetrics() *IntentMetrics {
	return &IntentMetrics{
		counts:   make(map[string]uint64),
		rejected: make(map[string]uint64),
		latency:  make(map[string]*Histogram),
		rate:     NewMetricSeries("intents"),
		now:      time.Now,
	}
}

// Record counts one intent. A nil err counts as applied.
func (m *IntentMetrics) Record(intentType string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.rejected[intentType]++
		return
	}
	m.counts[intentType]++
	h, ok := m.latency[intentType]
	if !ok {
		h = &Histogram{}
		m.latency[intentType] = h
	}
	h.Add(d)
	m.rate.Ingest(m.now().Unix(), 1)
}

// SocketDelta tracks open websocket clients.
func (m *IntentMetrics) SocketDelta(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.sockets += n
	m.mu.Unlock()
}

// IntentStat is one row of a metrics snapshot.
type IntentStat struct {
	Type     string    `json:"type"`
	Applied  uint64    `json:"applied"`
	Rejected uint64    `json:"rejected"`
	Latency  Histogram `json:"latency"`
}

// MetricsSnapshot is the /api/metrics payload.
type MetricsSnapshot struct {
	Timestamp int64                       `json:"timestamp"`
	ActiveWS  int                         `json:"activeWS"`
	Intents   []IntentStat                `json:"intents"`
	Rate      map[string][]Point[float64] `json:"rate"`
}

func (m *IntentMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make(map[string]bool)
	for t := range m.counts {
		types[t] = true
	}
	for t := range m.rejected {
		types[t] = true
	}
	snap := MetricsSnapshot{
		Timestamp: m.now().Unix(),
		ActiveWS:  m.sockets,
		Intents:   make([]IntentStat, 0, len(types)),
		Rate:      make(map[string][]Point[float64]),
	}
	for t := range types {
		st := IntentStat{Type: t, Applied: m.counts[t], Rejected: m.rejected[t]}
		if h := m.latency[t]; h != nil {
			st.Latency = *h
		}
		snap.Intents = append(snap.Intents, st)
	}
	sort.Slice(snap.Intents, func(i, j int) bool { return snap.Intents[i].Type < snap.Intents[j].Type })
	for name, buf := range m.rate.Buffers {
		snap.Rate[name] = buf.GetPoints()
	}
	return snap
}
