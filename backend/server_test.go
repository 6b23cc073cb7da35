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
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.DataDir == "" {
		opts.DataDir = t.TempDir()
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = 20 * time.Millisecond
	}
	hubs, handler := NewServerHandler(opts)
	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		hubs.Close()
	})
	return server
}

// call sends a request with an optional mock user and JSON body, and
// returns the status and body.
func call(t *testing.T, method, url, user string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if user != "" {
		req.AddCookie(&http.Cookie{Name: "mock_auth_user", Value: user})
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

type createResponse struct {
	ID   string          `json:"id"`
	View scoreboard.View `json:"view"`
}

type intentResponse struct {
	Changed  bool            `json:"changed"`
	View     scoreboard.View `json:"view"`
	SettleMs int64           `json:"settleMs"`
}

func createSession(t *testing.T, server *httptest.Server, user string) string {
	t.Helper()
	code, body := call(t, "POST", server.URL+"/api/sessions", user, nil)
	if code != http.StatusCreated {
		t.Fatalf("Create: expected 201, got %d: %s", code, body)
	}
	var cr createResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		t.Fatal(err)
	}
	if !isValidUUID(cr.ID) {
		t.Fatalf("Expected a UUID, got %q", cr.ID)
	}
	if cr.View.Inning != 1 || cr.View.Half != "TOP" || cr.View.AwayLabel != "AWAY" {
		t.Errorf("Unexpected initial view %+v", cr.View)
	}
	return cr.ID
}

func postIntent(t *testing.T, server *httptest.Server, id, user string, in Intent) (int, intentResponse) {
	t.Helper()
	code, body := call(t, "POST", server.URL+"/api/sessions/"+id+"/intents", user, in)
	var ir intentResponse
	if code == http.StatusOK {
		if err := json.Unmarshal(body, &ir); err != nil {
			t.Fatal(err)
		}
	}
	return code, ir
}

func getView(t *testing.T, server *httptest.Server, id string) scoreboard.View {
	t.Helper()
	code, body := call(t, "GET", server.URL+"/api/sessions/"+id, "", nil)
	if code != http.StatusOK {
		t.Fatalf("Get: expected 200, got %d: %s", code, body)
	}
	var v scoreboard.View
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestServer_SessionLifecycle(t *testing.T) {
	server := newTestServer(t, Options{})
	id := createSession(t, server, "")

	code, ir := postIntent(t, server, id, "", Intent{Type: IntentScore, Team: "home", Delta: 3})
	if code != http.StatusOK || !ir.Changed || ir.View.HomeScore != 3 {
		t.Fatalf("Score: got %d %+v", code, ir)
	}
	code, ir = postIntent(t, server, id, "", Intent{Type: IntentScore, Team: "away", Delta: -1})
	if code != http.StatusOK || ir.Changed {
		t.Errorf("Clamped score should be a no-op, got %d %+v", code, ir)
	}

	postIntent(t, server, id, "", Intent{Type: IntentTeamName, Team: "home", Name: "sox"})
	if v := getView(t, server, id); v.HomeLabel != "SOX" || v.HomeScore != 3 {
		t.Errorf("Unexpected view %+v", v)
	}

	code, body := call(t, "GET", server.URL+"/api/sessions", "", nil)
	var list []string
	if code != http.StatusOK || json.Unmarshal(body, &list) != nil || len(list) != 1 || list[0] != id {
		t.Errorf("List: got %d %s", code, body)
	}

	code, _ = call(t, "DELETE", server.URL+"/api/sessions/"+id, "", nil)
	if code != http.StatusBadRequest {
		t.Errorf("Delete without confirm: expected 400, got %d", code)
	}
	code, _ = call(t, "DELETE", server.URL+"/api/sessions/"+id+"?confirm=true", "", nil)
	if code != http.StatusNoContent {
		t.Fatalf("Delete: expected 204, got %d", code)
	}
	code, _ = call(t, "GET", server.URL+"/api/sessions/"+id, "", nil)
	if code != http.StatusNotFound {
		t.Errorf("Get after delete: expected 404, got %d", code)
	}
}

func TestServer_BadRequests(t *testing.T) {
	server := newTestServer(t, Options{})
	id := createSession(t, server, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"BadID", "GET", "/api/sessions/not-a-uuid", nil, http.StatusBadRequest},
		{"UnknownID", "GET", "/api/sessions/10000000-0000-4000-8000-00000000ffff", nil, http.StatusNotFound},
		{"UnknownIntent", "POST", "/api/sessions/" + id + "/intents", Intent{Type: "BUNT"}, http.StatusBadRequest},
		{"MissingPlayer", "POST", "/api/sessions/" + id + "/intents", Intent{Type: IntentAddPlay, PlayType: "single", Location: "left"}, http.StatusBadRequest},
		{"UnconfirmedReset", "POST", "/api/sessions/" + id + "/intents", Intent{Type: IntentReset}, http.StatusBadRequest},
		{"MalformedIntent", "POST", "/api/sessions/" + id + "/intents", "not an intent", http.StatusBadRequest},
		{"BadRecapFormat", "GET", "/api/sessions/" + id + "/recap?format=long", nil, http.StatusBadRequest},
		{"BadShareTarget", "GET", "/api/sessions/" + id + "/share/fax", nil, http.StatusBadRequest},
		{"BadPlaysQuery", "GET", "/api/sessions/" + id + "/plays?q=color:red", nil, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, body := call(t, tc.method, server.URL+tc.path, "", tc.body)
			if code != tc.want {
				t.Errorf("Expected %d, got %d: %s", tc.want, code, body)
			}
		})
	}

	if v := getView(t, server, id); len(v.Plays) != 0 {
		t.Errorf("Rejected intents should not change the session, got %+v", v.Plays)
	}
}

func TestServer_ThirdOutSettles(t *testing.T) {
	server := newTestServer(t, Options{SettleDelay: 300 * time.Millisecond})
	id := createSession(t, server, "")

	var ir intentResponse
	for i := 0; i < 3; i++ {
		_, ir = postIntent(t, server, id, "", Intent{Type: IntentOut})
	}
	if !ir.View.Locked || ir.View.Outs != 3 || ir.SettleMs != 300 {
		t.Fatalf("Expected locked view with settleMs, got %+v", ir)
	}
	if _, ir = postIntent(t, server, id, "", Intent{Type: IntentOut}); ir.Changed {
		t.Error("Outs during the settle should be ignored")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		v := getView(t, server, id)
		if !v.Locked {
			if v.Outs != 0 || v.Half != "BOTTOM" || v.Inning != 1 {
				t.Errorf("Expected bottom of the 1st with no outs, got %+v", v)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Half inning never advanced")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServer_RecapSharePlays(t *testing.T) {
	server := newTestServer(t, Options{})
	id := createSession(t, server, "")
	base := server.URL + "/api/sessions/" + id

	postIntent(t, server, id, "", Intent{Type: IntentTeamName, Team: "away", Name: "Cubs"})
	postIntent(t, server, id, "", Intent{Type: IntentScore, Team: "away", Delta: 2})
	postIntent(t, server, id, "", Intent{Type: IntentAddPlay, Player: "Ruth", PlayType: "single", Location: "left field"})
	postIntent(t, server, id, "", Intent{Type: IntentInning, Direction: 1})
	postIntent(t, server, id, "", Intent{Type: IntentInning, Direction: 1})
	postIntent(t, server, id, "", Intent{Type: IntentAddPlay, Player: "Gehrig", PlayType: "strikeout"})

	code, body := call(t, "GET", base+"/recap?format=terse", "", nil)
	if code != http.StatusOK || string(body) != "Current Score: CUBS 2, HOME 0 (Top 2)" {
		t.Errorf("Terse recap: got %d %q", code, body)
	}
	code, body = call(t, "GET", base+"/recap", "", nil)
	if code != http.StatusOK || !strings.Contains(string(body), "2 to 0") {
		t.Errorf("Full recap: got %d %q", code, body)
	}

	code, body = call(t, "GET", base+"/share/text", "", nil)
	var sh map[string]string
	if code != http.StatusOK || json.Unmarshal(body, &sh) != nil {
		t.Fatalf("Share: got %d %s", code, body)
	}
	if sh["uri"] != "sms:?&body=Current%20Score%3A%20CUBS%202%2C%20HOME%200%20(Top%202)" {
		t.Errorf("Unexpected share uri %q", sh["uri"])
	}

	code, body = call(t, "GET", base+"/plays?q=inning:2", "", nil)
	var rows []scoreboard.PlayRow
	if code != http.StatusOK || json.Unmarshal(body, &rows) != nil {
		t.Fatalf("Plays: got %d %s", code, body)
	}
	if len(rows) != 1 || rows[0].Text != "Gehrig struck out." || rows[0].Meta != "T2" {
		t.Errorf("Unexpected rows %+v", rows)
	}
	code, body = call(t, "GET", base+"/plays", "", nil)
	if code != http.StatusOK || json.Unmarshal(body, &rows) != nil || len(rows) != 2 {
		t.Errorf("All plays: got %d %s", code, body)
	}
}

func TestServer_Metrics(t *testing.T) {
	server := newTestServer(t, Options{})
	id := createSession(t, server, "")
	postIntent(t, server, id, "", Intent{Type: IntentOut})
	postIntent(t, server, id, "", Intent{Type: IntentAddPlay})

	code, body := call(t, "GET", server.URL+"/api/metrics", "", nil)
	var snap MetricsSnapshot
	if code != http.StatusOK || json.Unmarshal(body, &snap) != nil {
		t.Fatalf("Metrics: got %d %s", code, body)
	}
	got := map[string]IntentStat{}
	for _, st := range snap.Intents {
		got[st.Type] = st
	}
	if got[IntentOut].Applied != 1 || got[IntentAddPlay].Rejected != 1 {
		t.Errorf("Unexpected stats %+v", snap.Intents)
	}
}

func TestServer_ListSessionsWithAuth(t *testing.T) {
	server := newTestServer(t, Options{UseMockAuth: true})
	alice := createSession(t, server, "alice@example.com")
	bob := createSession(t, server, "bob@example.com")

	if code, _ := call(t, "GET", server.URL+"/api/sessions", "", nil); code != http.StatusUnauthorized {
		t.Errorf("Anonymous list: expected 401, got %d", code)
	}

	code, body := call(t, "GET", server.URL+"/api/sessions", "alice@example.com", nil)
	if code != http.StatusOK {
		t.Fatalf("List: expected 200, got %d: %s", code, body)
	}
	if strings.Contains(string(body), "@example.com") {
		t.Errorf("List leaks owners: %s", body)
	}
	var list []string
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0] != alice {
		t.Errorf("Expected only %s, got %v (bob owns %s)", alice, list, bob)
	}
}

func TestServer_SecurityHeaders(t *testing.T) {
	server := newTestServer(t, Options{})
	resp, err := http.Get(server.URL + "/api/sessions")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("Missing X-Frame-Options")
	}
	if !strings.Contains(resp.Header.Get("Cache-Control"), "no-cache") {
		t.Errorf("Unexpected Cache-Control %q", resp.Header.Get("Cache-Control"))
	}
}

func TestServer_MockAuthAccess(t *testing.T) {
	server := newTestServer(t, Options{UseMockAuth: true})
	owner := "Owner@Example.com"
	other := "other@example.com"

	if code, _ := call(t, "POST", server.URL+"/api/sessions", "", nil); code != http.StatusUnauthorized {
		t.Errorf("Anonymous create: expected 401, got %d", code)
	}
	id := createSession(t, server, owner)
	score := Intent{Type: IntentScore, Team: "home", Delta: 1}

	if code, _ := postIntent(t, server, id, "", score); code != http.StatusUnauthorized {
		t.Errorf("Anonymous intent: expected 401, got %d", code)
	}
	if code, _ := postIntent(t, server, id, other, score); code != http.StatusForbidden {
		t.Errorf("Other user intent: expected 403, got %d", code)
	}
	if code, _ := postIntent(t, server, id, "owner@example.com", score); code != http.StatusOK {
		t.Errorf("Owner intent: expected 200, got %d", code)
	}
	if v := getView(t, server, id); v.HomeScore != 1 {
		t.Errorf("Anyone may read: expected home 1, got %d", v.HomeScore)
	}
	if code, _ := call(t, "DELETE", server.URL+"/api/sessions/"+id+"?confirm=true", other, nil); code != http.StatusForbidden {
		t.Errorf("Other user delete: expected 403, got %d", code)
	}
	if code, _ := call(t, "DELETE", server.URL+"/api/sessions/"+id+"?confirm=true", owner, nil); code != http.StatusNoContent {
		t.Errorf("Owner delete: expected 204, got %d", code)
	}
}

func TestServer_SharedSecretJWT(t *testing.T) {
	secret := "test-secret"
	server := newTestServer(t, Options{AuthSecret: secret})

	sign := func(key, email string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": email,
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		s, err := token.SignedString([]byte(key))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	create := func(token string) int {
		req, _ := http.NewRequest("POST", server.URL+"/api/sessions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := create(sign(secret, "coach@example.com")); code != http.StatusCreated {
		t.Errorf("Valid token: expected 201, got %d", code)
	}
	if code := create(sign("wrong", "coach@example.com")); code != http.StatusUnauthorized {
		t.Errorf("Bad signature: expected 401, got %d", code)
	}

	req, _ := http.NewRequest("POST", server.URL+"/api/sessions", nil)
	req.AddCookie(&http.Cookie{Name: defaultAuthCookieName, Value: sign(secret, "coach@example.com")})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Cookie token: expected 201, got %d", resp.StatusCode)
	}
}

func TestGetSessionAccess(t *testing.T) {
	owned := SessionMeta{ID: "x", OwnerID: "Owner@example.com"}
	unowned := SessionMeta{ID: "y"}
	tests := []struct {
		name     string
		user     string
		meta     SessionMeta
		required bool
		want     AccessLevel
	}{
		{"NoAuth", "", owned, false, AccessAdmin},
		{"Anonymous", "", owned, true, AccessRead},
		{"Owner", " owner@EXAMPLE.com", owned, true, AccessAdmin},
		{"Other", "other@example.com", owned, true, AccessRead},
		{"Unowned", "other@example.com", unowned, true, AccessWrite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetSessionAccess(tc.user, tc.meta, tc.required); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"user@example.com": "u***@example.com",
		"":                 "<empty>",
		"nope":             "****",
	}
	for in, want := range tests {
		if got := maskEmail(in); got != want {
			t.Errorf("maskEmail(%q): expected %q, got %q", in, want, got)
		}
	}
}
