/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Play · Pose sessions
//
// A session is one running game shared by every browser that opens its URL.
// The host screen plays the tracks; phones can join to steer the game.
//
// - WebSockets per session ID: /play/:sessionid and /play/:sessionid/ws
// - The first connection to a session becomes the host, whose cookie owns
//   the stored settings
// - All game commands and timer callbacks run on the session's hub loop
// - A session with no connected clients is paused after --player-timeout
// - Idle sessions are reaped after --session-timeout
// - QR code of the session URL at /play/:sessionid/qr

package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/playpose/playpose"
	"github.com/Seednode/playpose/storage"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	playPath = "/play"

	playerCookieName = "playpose_id"

	sessionIDLength = 8
	sendBuffer      = 32
	maxMessageSize  = 256 << 10
	maxTracks       = 1000

	loadTimeout = 5 * time.Second
)

// Messages coming from clients
type ClientMessage struct {
	Type      string           `json:"type"` // "toggle", "skip", "stop", "load_tracks", "track_ended", "shuffle", "settings", "player_ready"
	List      string           `json:"list,omitempty"`
	Tracks    []playpose.Track `json:"tracks,omitempty"`
	Role      string           `json:"role,omitempty"`
	Length    *string          `json:"length,omitempty"`
	Volume    *string          `json:"volume,omitempty"`
	ShowTimer *bool            `json:"showTimer,omitempty"`
	Enabled   *bool            `json:"enabled,omitempty"`
}

// SessionInfoMessage is sent on connect.
type SessionInfoMessage struct {
	Type      string `json:"type"` // "session"
	SessionID string `json:"session_id"`
	IsHost    bool   `json:"is_host"`
}

type StateMessage struct {
	Type  string            `json:"type"` // "state"
	State playpose.Snapshot `json:"state"`
}

type SettingsMessage struct {
	Type     string            `json:"type"` // "settings"
	Settings playpose.Settings `json:"settings"`
}

// RejectedMessage is sent only to the client whose command was refused.
type RejectedMessage struct {
	Type   string `json:"type"` // "rejected"
	Action string `json:"action"`
}

// VolumeMessage tells the host to set one embedded player's volume.
type VolumeMessage struct {
	Type  string `json:"type"` // "volume"
	Role  string `json:"role"`
	Level int    `json:"level"`
}

// LocalVolumeMessage sets the volume of local audio elements, in [0,1].
type LocalVolumeMessage struct {
	Type  string  `json:"type"` // "local_volume"
	Level float64 `json:"level"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type command struct {
	client *Client
	msg    ClientMessage
}

// remotePlayer forwards volume changes to the host's embedded player.
type remotePlayer struct {
	s    *Session
	role playpose.Role
}

func (p remotePlayer) SetVolume(level int) error {
	p.s.broadcast(VolumeMessage{
		Type:  "volume",
		Role:  p.role.String(),
		Level: level,
	})
	return nil
}

type localOutput struct {
	s *Session
}

func (o localOutput) SetVolume(level float64) {
	o.s.broadcast(LocalVolumeMessage{
		Type:  "local_volume",
		Level: level,
	})
}

type Session struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	commands chan command
	tasks    chan func()

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time

	kv            storage.Backend
	playerTimeout time.Duration
	logf          func(string, ...any)

	sched  *playpose.ClockScheduler
	game   *playpose.Game
	mixer  *playpose.Mixer
	store  *playpose.Store
	hostID string
	idle   playpose.Handle
}

func newSession(id string, kv storage.Backend, clock clockwork.Clock, playerTimeout time.Duration, logf func(string, ...any)) *Session {
	now := clock.Now()

	s := &Session{
		id:            id,
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unreg:         make(chan *Client),
		commands:      make(chan command),
		tasks:         make(chan func(), 16),
		done:          make(chan struct{}),
		stopped:       make(chan struct{}),
		createdAt:     now,
		lastActive:    now,
		kv:            kv,
		playerTimeout: playerTimeout,
		logf:          logf,
		mixer:         playpose.NewMixer(),
	}

	s.sched = playpose.NewClockScheduler(clock, s.post)
	s.game = playpose.NewGame(s.sched)
	s.mixer.Logf = logf
	s.mixer.AddLocal(localOutput{s: s})

	return s
}

// post queues fn to run on the hub loop.
func (s *Session) post(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.done:
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.sched.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastActive
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) run() {
	defer close(s.stopped)

	for {
		select {
		case c := <-s.register:
			s.touch()
			s.handleRegister(c)

		case c := <-s.unreg:
			s.touch()
			s.handleUnregister(c)

		case cmd := <-s.commands:
			s.touch()
			s.handleCommand(cmd)

		case fn := <-s.tasks:
			fn()

		case <-s.done:
			s.shutdown()
			return
		}

		s.broadcastState()
	}
}

func (s *Session) handleRegister(c *Client) {
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}

	if s.hostID == "" {
		s.hostID = c.playerID

		kv := s.kv.Namespace("player:" + c.playerID)

		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		settings := playpose.LoadSettings(ctx, kv)
		cancel()

		s.store = playpose.NewStore(kv, s.sched, settings)
		s.store.Logf = s.logf

		s.game.ApplySettings(settings)
		s.mixer.SetVolume(settings.VolumeLevel())
	}

	s.clients[c] = true

	s.sendTo(c, SessionInfoMessage{
		Type:      "session",
		SessionID: s.id,
		IsHost:    c.playerID == s.hostID,
	})
	s.sendTo(c, SettingsMessage{
		Type:     "settings",
		Settings: s.store.Settings(),
	})
	if v, ok := s.mixer.PendingVolume(); ok {
		s.sendTo(c, LocalVolumeMessage{
			Type:  "local_volume",
			Level: float64(v) / 100,
		})
	}
}

func (s *Session) handleUnregister(c *Client) {
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}

	if len(s.clients) > 0 {
		return
	}

	// Nobody is left to hear the players.
	s.mixer.SetPlayer(playpose.RolePlay, nil)
	s.mixer.SetPlayer(playpose.RolePose, nil)

	if s.idle != nil {
		s.idle.Stop()
	}
	s.idle = s.sched.AfterFunc(s.playerTimeout, func() {
		s.idle = nil
		if len(s.clients) == 0 && s.game.Pause() {
			s.logf("GAMES: Paused session %s with no players", s.id)
		}
	})
}

func (s *Session) handleCommand(cmd command) {
	msg := cmd.msg

	switch msg.Type {
	case "toggle":
		if !s.game.Toggle() {
			s.reject(cmd.client, msg.Type)
		}

	case "skip":
		if !s.game.SkipCurrentSong() {
			s.reject(cmd.client, msg.Type)
			return
		}
		s.game.NextTrack(s.game.ActiveList())

	case "stop":
		s.game.Stop()

	case "track_ended":
		name, err := playpose.ParseListName(msg.List)
		if err != nil {
			s.reject(cmd.client, msg.Type)
			return
		}
		if s.game.Phase() != playpose.PhaseIdle {
			s.game.NextTrack(name)
		}

	case "load_tracks":
		name, err := playpose.ParseListName(msg.List)
		if err != nil || len(msg.Tracks) > maxTracks {
			s.reject(cmd.client, msg.Type)
			return
		}
		s.game.LoadTracks(name, msg.Tracks)

	case "shuffle":
		if msg.Enabled == nil {
			s.reject(cmd.client, msg.Type)
			return
		}
		s.game.SetShuffle(*msg.Enabled)

	case "settings":
		s.applySettings(msg)

	case "player_ready":
		role, err := playpose.ParseRole(msg.Role)
		if err != nil {
			s.reject(cmd.client, msg.Type)
			return
		}
		if s.mixer.Player(role) == nil {
			s.mixer.SetPlayer(role, remotePlayer{s: s, role: role})
		}
		s.mixer.MarkReady(role)

	default:
		s.reject(cmd.client, msg.Type)
	}
}

func (s *Session) applySettings(msg ClientMessage) {
	before := s.store.Settings()

	s.store.Update(func(v *playpose.Settings) {
		if msg.Length != nil {
			v.Length = *msg.Length
		}
		if msg.Volume != nil {
			v.Volume = *msg.Volume
		}
		if msg.ShowTimer != nil {
			v.ShowTimer = *msg.ShowTimer
		}
	})

	after := s.store.Settings()

	if after.Length != before.Length {
		s.game.SetLengthPreset(after.LengthPreset())
	}
	if after.Volume != before.Volume {
		s.mixer.SetVolume(after.VolumeLevel())
	}
	if after.ShowTimer != before.ShowTimer {
		s.game.HandleShowTimerChange(after.ShowTimer)
	}

	s.broadcast(SettingsMessage{
		Type:     "settings",
		Settings: after,
	})
}

func (s *Session) reject(c *Client, action string) {
	s.sendTo(c, RejectedMessage{
		Type:   "rejected",
		Action: action,
	})
}

// sendTo queues msg for c, dropping the client if it has fallen behind.
func (s *Session) sendTo(c *Client, msg any) {
	if _, ok := s.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Session) broadcast(msg any) {
	for c := range s.clients {
		s.sendTo(c, msg)
	}
}

func (s *Session) broadcastState() {
	if len(s.clients) == 0 {
		return
	}

	s.broadcast(StateMessage{
		Type:  "state",
		State: s.game.Snapshot(),
	})
}

func (s *Session) shutdown() {
	s.game.Stop()

	if s.idle != nil {
		s.idle.Stop()
	}

	if s.store != nil {
		s.store.Close()
	}

	for c := range s.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(s.clients, c)
	}
}

// enqueue hands a client event to the hub unless the session has ended.
func enqueue[T any](s *Session, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-s.done:
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// SessionManager holds the running sessions keyed by session ID.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg     *Config
	backend storage.Backend
	clock   clockwork.Clock
}

func newSessionManager(cfg *Config, backend storage.Backend, clock clockwork.Clock) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		backend:  backend,
		clock:    clock,
	}
}

func (sm *SessionManager) getSession(id string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if s, ok := sm.sessions[id]; ok {
		return s
	}

	s := newSession(id, sm.backend, sm.clock, sm.cfg.playerTimeout, logger(sm.cfg))
	sm.sessions[id] = s
	go s.run()

	logf(sm.cfg, "GAMES: Started session %s", id)

	return s
}

const sessionLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// newSessionID generates a crypto-random session ID that no running session
// already uses.
func (sm *SessionManager) newSessionID() string {
	for {
		buf := make([]byte, sessionIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, sessionIDLength)
		for i := range out {
			out[i] = sessionLetters[int(buf[i])%len(sessionLetters)]
		}
		id := string(out)

		sm.mu.Lock()
		_, exists := sm.sessions[id]
		sm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

func validSessionID(id string) bool {
	if len(id) < 4 || len(id) > 32 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(sessionLetters, rune(id[i])) {
			return false
		}
	}
	return true
}

// reap ends every session idle since before cutoff and reports how many.
func (sm *SessionManager) reap(cutoff time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	n := 0
	for id, s := range sm.sessions {
		if s.idleSince().Before(cutoff) {
			delete(sm.sessions, id)
			s.close()
			n++

			logf(sm.cfg, "GAMES: Reaped idle session %s", id)
		}
	}

	return n
}

func (sm *SessionManager) reaperLoop(ctx context.Context) {
	ticker := sm.clock.NewTicker(sm.cfg.sessionTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			sm.reap(sm.clock.Now().Add(-sm.cfg.sessionTimeout))
		}
	}
}

// closeAll ends every session and waits for their settings to be flushed.
func (sm *SessionManager) closeAll() {
	sm.mu.Lock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for id, s := range sm.sessions {
		sessions = append(sessions, s)
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	for _, s := range sessions {
		<-s.stopped
	}
}

func serveWS(cfg *Config, sm *SessionManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("sessionid")
		if !validSessionID(sessionID) {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		s := sm.getSession(sessionID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errs <- err
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, sendBuffer),
			playerID: playerID,
		}

		if !enqueue(s, s.register, client) {
			_ = conn.Close()
			return
		}

		logf(cfg, "GAMES: %s joined session %s", realIP(r), sessionID)

		go client.writePump()
		client.readPump(s)
	}
}

func (c *Client) readPump(s *Session) {
	defer func() {
		enqueue(s, s.unreg, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if !enqueue(s, s.commands, command{client: c, msg: msg}) {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current session URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validSessionID(ps.ByName("sessionid")) {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

// redirectNewSession sends GET /play to a fresh /play/:sessionid.
func redirectNewSession(cfg *Config, path string, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := sm.newSessionID()
		logf(cfg, "GAMES: Created session %s%s/%s", cfg.prefix, path, id)
		http.Redirect(w, r, cfg.prefix+path+"/"+id, http.StatusTemporaryRedirect)
	}
}

// registerPlayPose sets up routes so that:
//   - $path                  → redirects to a new random session
//   - $path/:sessionid       → HTML client
//   - $path/:sessionid/ws    → WebSocket for that session
//   - $path/:sessionid/qr    → PNG QR code for that session URL
func registerPlayPose(cfg *Config, path string, mux *httprouter.Router, sm *SessionManager, errs chan<- error) {
	mux.GET(cfg.prefix+path, redirectNewSession(cfg, path, sm))

	mux.GET(cfg.prefix+path+"/:sessionid", servePlayPage(cfg, errs))

	mux.GET(cfg.prefix+path+"/:sessionid/ws", serveWS(cfg, sm, errs))

	mux.GET(cfg.prefix+path+"/:sessionid/qr", qrHandler(cfg))
}
