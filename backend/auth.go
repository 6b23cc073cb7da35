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
	"net/http"
	"strings"
)

type contextKey struct{}

// userIDKey carries the normalized email of the authenticated caller.
var userIDKey contextKey

// getUserID returns the caller's email, or "" for anonymous requests.
func getUserID(r *http.Request) string {
	if val := r.Context().Value(userIDKey); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// normalizeEmail ensures consistent casing and whitespace for User IDs.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// maskEmail obscures an email address for safe logging.
// e.g. "user@example.com" -> "u***@example.com"
func maskEmail(email string) string {
	if email == "" {
		return "<empty>"
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || len(parts[0]) < 1 {
		return "****"
	}
	return string(parts[0][0]) + "***@" + parts[1]
}

// AccessLevel orders what a caller may do with a session. Read covers the
// view, recap, share and plays endpoints and the live socket. Write adds
// intents. Admin adds deletion.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessRead
	AccessWrite
	AccessAdmin
)

func (l AccessLevel) String() string {
	switch l {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessAdmin:
		return "admin"
	}
	return "none"
}

// GetSessionAccess calculates the effective access level for a user on a
// session. Anyone may read a scoreboard. Without authentication configured
// everyone may also change it.
func GetSessionAccess(userId string, meta SessionMeta, authRequired bool) AccessLevel {
	userId = normalizeEmail(userId)
	ownerId := normalizeEmail(meta.OwnerID)

	if !authRequired {
		return AccessAdmin
	}
	if userId == "" {
		return AccessRead
	}
	if ownerId == userId {
		return AccessAdmin
	}
	if ownerId == "" {
		return AccessWrite
	}
	return AccessRead
}
