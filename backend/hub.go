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
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// Message types for WebSocket communication
const (
	MsgTypeIntent = "INTENT"
	MsgTypeView   = "VIEW"
	MsgTypeTimer  = "TIMER"
	MsgTypeError  = "ERROR"
	MsgTypePing   = "PING"
	MsgTypePong   = "PONG"
)

// Message represents a WebSocket message
type Message struct {
	Type    string           `json:"type"`
	Intent  *Intent          `json:"intent,omitempty"`
	View    *scoreboard.View `json:"view,omitempty"`
	Timer   string           `json:"timer,omitempty"`
	Elapsed int64            `json:"elapsed,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// HubRequest types
const (
	ReqTypeIntent = "INTENT"
	ReqTypeView   = "VIEW"
	ReqTypeRecap  = "RECAP"
	ReqTypeShare  = "SHARE"
	ReqTypePlays  = "PLAYS"
	ReqTypeSettle = "SETTLE"
	ReqTypeNotify = "NOTIFY"
)

// HubRequest represents a request to the Hub
type HubRequest struct {
	Type   string
	Client *wsClient // For WS requests
	Intent Intent
	Terse  bool                   // For recaps
	Target scoreboard.ShareTarget // For shares
	Notice Message                // For notifications to Client
	gen    uint64                 // For settles
	Reply  chan HubResponse
}

// HubResponse represents a response from the Hub
type HubResponse struct {
	View    scoreboard.View
	Changed bool
	Settle  time.Duration
	Text    string
	Plays   scoreboard.PlayLog
	Error   error
}

// HubConfig holds the settings every hub is created with.
type HubConfig struct {
	SettleDelay  time.Duration
	Highlights   int
	Clock        scoreboard.Clock
	TickInterval time.Duration
	IdleTimeout  time.Duration
	Metrics      *IntentMetrics
	Debugf       func(string, ...any)
}

func (c *HubConfig) setDefaults() {
	if c.SettleDelay <= 0 {
		c.SettleDelay = scoreboard.DefaultSettleDelay
	}
	if c.Highlights <= 0 {
		c.Highlights = scoreboard.DefaultHighlights
	}
	if c.Clock == nil {
		c.Clock = scoreboard.SystemClock{}
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 5 * time.Minute
	}
	if c.Debugf == nil {
		c.Debugf = func(string, ...any) {}
	}
}

var errHubClosed = errors.New("hub closed")

// Hub owns one Session. Its goroutine is the only code that touches the
// session, so every mutation, the settle completion and the display tick
// are serialized through the requests channel.
type Hub struct {
	id      string
	session *scoreboard.Session

	// Registered clients.
	clients map[*wsClient]bool

	// Inbound requests
	requests chan HubRequest

	// Register requests from the clients.
	register chan *wsClient

	// Unregister requests from clients.
	unregister chan *wsClient

	quit chan struct{}
	done chan struct{}

	ticker    *time.Ticker
	settle    *time.Timer
	settleGen uint64

	hm  *HubManager
	cfg HubConfig
}

func newHub(id string, store *SessionStore, hm *HubManager, cfg HubConfig) *Hub {
	h := &Hub{
		id:         id,
		clients:    make(map[*wsClient]bool),
		requests:   make(chan HubRequest, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		hm:         hm,
		cfg:        cfg,
	}
	recap := scoreboard.NewRecap(nil)
	recap.MaxHighlights = cfg.Highlights
	h.session = scoreboard.Open(store.For(id),
		scoreboard.WithClock(cfg.Clock),
		scoreboard.WithSettleDelay(cfg.SettleDelay),
		scoreboard.WithRecap(recap),
		scoreboard.WithPresenter(h),
	)
	return h
}

// Render implements scoreboard.Presenter. The session calls it from the
// hub goroutine after every persisted mutation.
func (h *Hub) Render(v scoreboard.View) {
	h.broadcast(Message{Type: MsgTypeView, View: &v})
}

func (h *Hub) run() {
	idleTimer := time.NewTicker(h.cfg.IdleTimeout)
	defer idleTimer.Stop()
	defer h.stop()

	h.syncDisplayTick()
	for {
		var tick <-chan time.Time
		if h.ticker != nil {
			tick = h.ticker.C
		}
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.cfg.Metrics.SocketDelta(1)
			v := h.session.View()
			h.sendTo(client, Message{Type: MsgTypeView, View: &v})
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.cfg.Metrics.SocketDelta(-1)
			}
		case req := <-h.requests:
			h.handle(req)
			h.syncDisplayTick()
		case <-tick:
			e := h.session.Elapsed()
			h.broadcast(Message{Type: MsgTypeTimer, Timer: scoreboard.FormatElapsed(e), Elapsed: e})
		case <-idleTimer.C:
			if len(h.clients) == 0 && !h.session.Game().AdvancePending && h.hm.release(h) {
				h.cfg.Debugf("Hub: %s idle, stopping", h.id)
				return
			}
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) stop() {
	if h.ticker != nil {
		h.ticker.Stop()
		h.ticker = nil
	}
	if h.settle != nil {
		h.settle.Stop()
	}
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		h.cfg.Metrics.SocketDelta(-1)
	}
	close(h.done)
}

func (h *Hub) handle(req HubRequest) {
	switch req.Type {
	case ReqTypeIntent:
		h.handleIntent(req)
	case ReqTypeSettle:
		if req.gen == h.settleGen {
			h.session.CompleteHalfInningAdvance()
		}
	case ReqTypeView:
		v := h.session.View()
		h.sendTo(req.Client, Message{Type: MsgTypeView, View: &v})
		h.reply(req, HubResponse{View: v})
	case ReqTypeNotify:
		h.sendTo(req.Client, req.Notice)
	case ReqTypeRecap:
		text := h.session.Recap()
		if req.Terse {
			text = h.session.ShareLine()
		}
		h.reply(req, HubResponse{Text: text})
	case ReqTypeShare:
		text, err := scoreboard.ShareURI(req.Target, h.session.ShareLine())
		h.reply(req, HubResponse{Text: text, Error: err})
	case ReqTypePlays:
		h.reply(req, HubResponse{Plays: h.session.Plays()})
	default:
		log.Printf("Hub: unknown request type %s", req.Type)
	}
}

func (h *Hub) handleIntent(req HubRequest) {
	start := time.Now()
	changed, hint, err := applyIntent(h.session, req.Intent)
	h.cfg.Metrics.Record(req.Intent.Type, time.Since(start), err)
	if err != nil {
		h.cfg.Debugf("Hub: %s rejected %s: %v", h.id, req.Intent.Type, err)
		h.sendTo(req.Client, Message{Type: MsgTypeError, Error: err.Error()})
		h.reply(req, HubResponse{Error: err})
		return
	}
	if hint.Pending {
		h.scheduleSettle(hint.Settle)
	}
	h.reply(req, HubResponse{View: h.session.View(), Changed: changed, Settle: hint.Settle})
}

// scheduleSettle completes the pending half-inning advance after d. The
// completion comes back through the requests channel so it runs on the hub
// goroutine like any other mutation.
func (h *Hub) scheduleSettle(d time.Duration) {
	if h.settle != nil {
		h.settle.Stop()
	}
	h.settleGen++
	gen := h.settleGen
	h.settle = time.AfterFunc(d, func() {
		select {
		case h.requests <- HubRequest{Type: ReqTypeSettle, gen: gen}:
		case <-h.done:
		}
	})
}

// syncDisplayTick starts the one-second display tick while the game clock
// runs and stops it otherwise. Calling it again never adds a second tick.
func (h *Hub) syncDisplayTick() {
	running := h.session.Timer().IsRunning
	switch {
	case running && h.ticker == nil:
		h.ticker = time.NewTicker(h.cfg.TickInterval)
	case !running && h.ticker != nil:
		h.ticker.Stop()
		h.ticker = nil
	}
}

func (h *Hub) reply(req HubRequest, resp HubResponse) {
	if req.Reply != nil {
		req.Reply <- resp
	}
}

// sendTo queues a message for one client if it is still registered.
func (h *Hub) sendTo(c *wsClient, msg Message) {
	if c == nil || !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Hub) broadcast(msg Message) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			close(client.send)
			delete(h.clients, client)
			h.cfg.Metrics.SocketDelta(-1)
		}
	}
}

// Do sends a request to the hub and waits for the reply.
func (h *Hub) Do(ctx context.Context, req HubRequest) (HubResponse, error) {
	req.Reply = make(chan HubResponse, 1)
	select {
	case <-h.done:
		return HubResponse{}, errHubClosed
	default:
	}
	select {
	case h.requests <- req:
	case <-h.done:
		return HubResponse{}, errHubClosed
	case <-ctx.Done():
		return HubResponse{}, ctx.Err()
	}
	select {
	case resp := <-req.Reply:
		return resp, resp.Error
	case <-h.done:
		// The hub may have answered just before it stopped.
		select {
		case resp := <-req.Reply:
			return resp, resp.Error
		default:
			return HubResponse{}, errHubClosed
		}
	case <-ctx.Done():
		return HubResponse{}, ctx.Err()
	}
}

// HubManager manages one hub per open session.
type HubManager struct {
	hubs  map[string]*Hub
	mu    sync.Mutex
	store *SessionStore
	cfg   HubConfig
}

func NewHubManager(store *SessionStore, cfg HubConfig) *HubManager {
	cfg.setDefaults()
	return &HubManager{
		hubs:  make(map[string]*Hub),
		store: store,
		cfg:   cfg,
	}
}

// GetHub returns the running hub of a session, starting it if needed.
func (hm *HubManager) GetHub(id string) *Hub {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hub, ok := hm.hubs[id]; ok {
		return hub
	}
	hub := newHub(id, hm.store, hm, hm.cfg)
	hm.hubs[id] = hub
	go hub.run()
	return hub
}

// RemoveHub stops the hub of a session and waits for it to exit.
func (hm *HubManager) RemoveHub(id string) {
	hm.mu.Lock()
	hub, ok := hm.hubs[id]
	delete(hm.hubs, id)
	hm.mu.Unlock()

	if ok {
		close(hub.quit)
		<-hub.done
	}
}

// release forgets an idle hub unless it was already replaced.
func (hm *HubManager) release(h *Hub) bool {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if hm.hubs[h.id] != h {
		return false
	}
	delete(hm.hubs, h.id)
	return true
}

// Close stops every hub.
func (hm *HubManager) Close() {
	hm.mu.Lock()
	ids := make([]string, 0, len(hm.hubs))
	for id := range hm.hubs {
		ids = append(ids, id)
	}
	hm.mu.Unlock()

	for _, id := range ids {
		hm.RemoveHub(id)
	}
}

// wsClient is a middleman between the websocket connection and the hub.
type wsClient struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan Message

	userId   string
	canWrite bool
}

// readPump pumps messages from the websocket connection to the hub.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var req HubRequest
		switch msg.Type {
		case MsgTypeIntent:
			switch {
			case !c.canWrite:
				log.Printf("Forbidden: User %s attempted to send an intent to session %s", maskEmail(c.userId), c.hub.id)
				req = c.notice(Message{Type: MsgTypeError, Error: "Unauthenticated: Login required"})
			case msg.Intent == nil:
				req = c.notice(Message{Type: MsgTypeError, Error: "Malformed intent: missing intent"})
			default:
				req = HubRequest{Type: ReqTypeIntent, Client: c, Intent: *msg.Intent}
			}
		case MsgTypeView:
			req = HubRequest{Type: ReqTypeView, Client: c}
		case MsgTypePing:
			req = c.notice(Message{Type: MsgTypePong})
		default:
			log.Printf("Unknown message type: %s", msg.Type)
			req = c.notice(Message{Type: MsgTypeError, Error: "Unknown message type"})
		}
		select {
		case c.hub.requests <- req:
		case <-c.hub.done:
			return
		}
	}
}

// notice builds a request that makes the hub send msg back to this client.
// Only the hub goroutine writes to c.send.
func (c *wsClient) notice(msg Message) HubRequest {
	return HubRequest{Type: ReqTypeNotify, Client: c, Notice: msg}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades the request and attaches the connection to the hub of
// session id.
func (hm *HubManager) ServeWS(w http.ResponseWriter, r *http.Request, id string, canWrite bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	hub := hm.GetHub(id)
	client := &wsClient{hub: hub, conn: conn, send: make(chan Message, 256), userId: getUserID(r), canWrite: canWrite}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
