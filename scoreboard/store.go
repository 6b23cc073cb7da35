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
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"sync"
)

// Storage keys. Each holds one JSON blob.
const (
	KeyGame     = "game"
	KeyLog      = "log"
	KeyTheme    = "theme"
	KeyTimer    = "timer"
	KeyWakeLock = "wakelock"
	KeyPitch    = "pitch"
	KeyTeamAway = "team_away"
	KeyTeamHome = "team_home"
)

// AllKeys lists every key a session writes.
var AllKeys = []string{KeyGame, KeyLog, KeyTheme, KeyTimer, KeyWakeLock, KeyPitch, KeyTeamAway, KeyTeamHome}

// Store saves and loads named blobs. Load of a missing key returns an error
// matching fs.ErrNotExist. Every Save is a full overwrite of its key.
type Store interface {
	Load(key string, v any) error
	Save(key string, v any) error
	Clear() error
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(key string, v any) error {
	m.mu.Lock()
	b, ok := m.blobs[key]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", key, fs.ErrNotExist)
	}
	return json.Unmarshal(b, v)
}

func (m *MemoryStore) Save(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[key] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	clear(m.blobs)
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys, sorted.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.blobs))
}

// Raw returns the stored JSON for key.
func (m *MemoryStore) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	return b, ok
}
