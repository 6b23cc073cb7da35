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
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/c2FmZQ/storage"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

// SessionMeta is the sidecar written when a session is created.
type SessionMeta struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// SessionStore manages session persistence to disk. Every session has its
// own directory under sessions/ with one file per scoreboard key and a
// meta.json sidecar.
type SessionStore struct {
	DataDir string
	Debug   bool
	storage *storage.Storage
	mu      sync.Map // Stores *sync.RWMutex for each session id
	cache   sync.Map // Stores the latest JSON bytes for each "id/key"
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(dataDir string, s *storage.Storage) *SessionStore {
	return &SessionStore{
		DataDir: dataDir,
		storage: s,
	}
}

func sessionDir(id string) string {
	return filepath.Join("sessions", url.PathEscape(id))
}

func blobFile(id, key string) string {
	return filepath.Join(sessionDir(id), key+".json")
}

func metaFile(id string) string {
	return filepath.Join(sessionDir(id), "meta.json")
}

func (ss *SessionStore) lock(id string) *sync.RWMutex {
	m, _ := ss.mu.LoadOrStore(id, &sync.RWMutex{})
	return m.(*sync.RWMutex)
}

// Create writes the metadata sidecar of a new session.
func (ss *SessionStore) Create(meta SessionMeta) error {
	if meta.ID == "" {
		return errors.New("missing session id")
	}
	if meta.CreatedAt == 0 {
		meta.CreatedAt = time.Now().UnixMilli()
	}
	mutex := ss.lock(meta.ID)
	mutex.Lock()
	defer mutex.Unlock()

	if err := ss.storage.SaveDataFile(metaFile(meta.ID), &meta); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

// LoadMeta returns the session sidecar, or os.ErrNotExist.
func (ss *SessionStore) LoadMeta(id string) (*SessionMeta, error) {
	mutex := ss.lock(id)
	mutex.RLock()
	defer mutex.RUnlock()

	var meta SessionMeta
	if err := ss.storage.ReadDataFile(metaFile(id), &meta); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	return &meta, nil
}

// Exists reports whether the session was created and not deleted.
func (ss *SessionStore) Exists(id string) bool {
	_, err := ss.LoadMeta(id)
	return err == nil
}

// DeleteSession permanently removes a session and all of its blobs. The
// meta sidecar goes first, so a hub that is still running can no longer
// write blobs back into the directory.
func (ss *SessionStore) DeleteSession(id string) error {
	mutex := ss.lock(id)
	mutex.Lock()
	defer mutex.Unlock()
	defer ss.mu.Delete(id)

	ss.purgeCache(id)
	if err := os.Remove(filepath.Join(ss.DataDir, metaFile(id))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not remove session meta: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(ss.DataDir, sessionDir(id))); err != nil {
		return fmt.Errorf("could not purge session: %w", err)
	}
	return nil
}

func (ss *SessionStore) purgeCache(id string) {
	prefix := id + "/"
	ss.cache.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			ss.cache.Delete(k)
		}
		return true
	})
}

// ListSessions returns an iterator over the metadata of every stored session.
func (ss *SessionStore) ListSessions() iter.Seq2[SessionMeta, error] {
	return func(yield func(SessionMeta, error) bool) {
		entries, err := os.ReadDir(filepath.Join(ss.DataDir, "sessions"))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				yield(SessionMeta{}, fmt.Errorf("could not read sessions directory: %w", err))
			}
			return
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			id, err := url.PathUnescape(e.Name())
			if err != nil {
				continue
			}
			meta, err := ss.LoadMeta(id)
			if err != nil {
				log.Printf("Warning: session %s has no readable metadata: %v", id, err)
				continue
			}
			if !yield(*meta, nil) {
				return
			}
		}
	}
}

// For returns the scoreboard.Store holding the blobs of one session.
func (ss *SessionStore) For(id string) scoreboard.Store {
	return &sessionBlobs{ss: ss, id: id}
}

func (ss *SessionStore) loadBlob(id, key string, v any) error {
	cacheKey := id + "/" + key
	if val, ok := ss.cache.Load(cacheKey); ok {
		if err := json.Unmarshal(val.([]byte), v); err == nil {
			if ss.Debug {
				log.Printf("[CACHE] Hit for %s", cacheKey)
			}
			return nil
		}
		ss.cache.Delete(cacheKey)
	}

	mutex := ss.lock(id)
	mutex.RLock()
	defer mutex.RUnlock()

	if err := ss.storage.ReadDataFile(blobFile(id, key), v); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return fmt.Errorf("ReadDataFile %s: %w", key, err)
	}
	if b, err := json.Marshal(v); err == nil {
		ss.cache.Store(cacheKey, b)
	}
	return nil
}

// saveBlob refuses to write into a session without a meta sidecar, which
// is the case once it has been deleted.
func (ss *SessionStore) saveBlob(id, key string, v any) error {
	mutex := ss.lock(id)
	mutex.Lock()
	defer mutex.Unlock()

	if _, err := os.Stat(filepath.Join(ss.DataDir, metaFile(id))); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return fmt.Errorf("session %s: %w", id, err)
	}

	if err := ss.storage.SaveDataFile(blobFile(id, key), v); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	if b, err := json.Marshal(v); err == nil {
		ss.cache.Store(id+"/"+key, b)
	}
	return nil
}

func (ss *SessionStore) clearBlobs(id string) error {
	mutex := ss.lock(id)
	mutex.Lock()
	defer mutex.Unlock()

	var errs []error
	for _, key := range scoreboard.AllKeys {
		ss.cache.Delete(id + "/" + key)
		if err := os.Remove(filepath.Join(ss.DataDir, blobFile(id, key))); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sessionBlobs adapts one session directory to scoreboard.Store.
type sessionBlobs struct {
	ss *SessionStore
	id string
}

func (b *sessionBlobs) Load(key string, v any) error { return b.ss.loadBlob(b.id, key, v) }
func (b *sessionBlobs) Save(key string, v any) error { return b.ss.saveBlob(b.id, key, v) }
func (b *sessionBlobs) Clear() error                 { return b.ss.clearBlobs(b.id) }
