// drawbox draw game
//
// Users enter a list of participants and a list of outcomes, then repeatedly
// draw a random unused (participant, outcome) pairing until every outcome has
// been assigned, at which point the next draw starts a fresh round.
//
// Features:
// - One websocket per page load at /path/ws; the connection owns its session
// - Initial lists seeded from ?participants=a,b&outcomes=x, or the defaults
// - Lists validated on every draw; changing a list starts a new round
// - Most recent draws kept in a short history, newest first
// - Share links and QR codes (go-qrcode) carrying the current lists
// - Named presets from a yaml file, redirecting to their share link
// - Stateless POST /path/api/select exposing the selector directly
// - Idle connections closed after the configured session timeout

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Seednode/drawbox/draw"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type         string   `json:"type"`                   // "draw", "reset", "share"
	Participants []string `json:"participants,omitempty"` // draw / share
	Outcomes     []string `json:"outcomes,omitempty"`     // draw / share
}

// SessionInfoMessage is sent immediately on connect so the client can render
// the form with the seeded lists and limits.
type SessionInfoMessage struct {
	Type            string   `json:"type"` // "session_info"
	Participants    []string `json:"participants"`
	Outcomes        []string `json:"outcomes"`
	Mode            string   `json:"mode"`
	HistorySize     int      `json:"history_size"`
	MaxParticipants int      `json:"max_participants"`
	MaxOutcomes     int      `json:"max_outcomes"`
}

// ValidationMessage lists every rejected entry or list; no draw took place.
type ValidationMessage struct {
	Type   string             `json:"type"` // "validation"
	Errors []*draw.FieldError `json:"errors"`
}

type DrawResultMessage struct {
	Type        string       `json:"type"` // "draw_result"
	Participant string       `json:"participant"`
	Outcome     string       `json:"outcome"`
	CreatedAt   time.Time    `json:"created_at"`
	History     []draw.Entry `json:"history"`
}

// ResetMessage tells the client its history was cleared.
type ResetMessage struct {
	Type    string `json:"type"`   // "reset"
	Reason  string `json:"reason"` // "exhausted", "requested", "lists_changed"
	Message string `json:"message"`
}

type ShareMessage struct {
	Type string `json:"type"` // "share"
	URL  string `json:"url"`
	QR   string `json:"qr"` // path of the QR code image for URL
}

type selectRequest struct {
	Candidates []json.RawMessage `json:"candidates"`
	Consumed   []int             `json:"consumed"`
}

type selectResponse struct {
	Index int `json:"index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	cfg     *Config
	conn    *websocket.Conn
	send    chan any
	session *draw.Session
	page    *url.URL
	qrPath  string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// normalizeList trims every entry but keeps empty ones, so validation can
// point at them by index.
func normalizeList(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// queue hands msg to the write loop. It reports false if the client is not
// keeping up, in which case the connection should be dropped.
func (c *Client) queue(msg any) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) sessionInfo() SessionInfoMessage {
	return SessionInfoMessage{
		Type:            "session_info",
		Participants:    c.session.Participants(),
		Outcomes:        c.session.Outcomes(),
		Mode:            c.session.Mode().String(),
		HistorySize:     c.cfg.historySize,
		MaxParticipants: c.cfg.maxParticipants,
		MaxOutcomes:     c.cfg.maxOutcomes,
	}
}

// validate checks the submitted lists, returning a message for the client
// when they are rejected.
func (c *Client) validate(participants, outcomes []string) (ValidationMessage, bool) {
	err := draw.Validate(participants, outcomes, c.cfg.limits(), c.cfg.mode())
	if err == nil {
		return ValidationMessage{}, true
	}

	var verrs draw.ValidationErrors
	if !errors.As(err, &verrs) {
		verrs = draw.ValidationErrors{{Index: -1, Message: err.Error(), Err: err}}
	}

	return ValidationMessage{Type: "validation", Errors: verrs}, false
}

// handle applies one client message to the session and returns the replies.
func (c *Client) handle(msg ClientMessage) []any {
	switch msg.Type {
	case "draw":
		participants, outcomes := normalizeList(msg.Participants), normalizeList(msg.Outcomes)

		if v, ok := c.validate(participants, outcomes); !ok {
			return []any{v}
		}

		var replies []any

		if c.session.SetLists(participants, outcomes) {
			replies = append(replies, ResetMessage{
				Type:    "reset",
				Reason:  "lists_changed",
				Message: "The lists changed, so a new round has started.",
			})
		}

		entry, err := c.session.Draw()
		switch {
		case errors.Is(err, draw.ErrExhausted):
			logf(c.cfg, "GAMES: Round finished, session reset")

			return append(replies, ResetMessage{
				Type:    "reset",
				Reason:  "exhausted",
				Message: "Every outcome has been drawn. Starting a new round.",
			})
		case err != nil:
			return append(replies, ValidationMessage{
				Type:   "validation",
				Errors: []*draw.FieldError{{Index: -1, Message: err.Error(), Err: err}},
			})
		}

		logf(c.cfg, "GAMES: Drew %q for %q", entry.Outcome, entry.Participant)

		return append(replies, DrawResultMessage{
			Type:        "draw_result",
			Participant: entry.Participant,
			Outcome:     entry.Outcome,
			CreatedAt:   entry.CreatedAt,
			History:     c.session.History(),
		})

	case "reset":
		c.session.Reset()

		return []any{ResetMessage{
			Type:    "reset",
			Reason:  "requested",
			Message: "A new round has started.",
		}}

	case "share":
		lists := draw.Preset{
			Participants: normalizeList(msg.Participants),
			Outcomes:     normalizeList(msg.Outcomes),
		}

		if v, ok := c.validate(lists.Participants, lists.Outcomes); !ok {
			return []any{v}
		}

		link := draw.ShareURL(c.page, lists)

		return []any{ShareMessage{
			Type: "share",
			URL:  link,
			QR:   c.qrPath + "?" + link[strings.IndexByte(link, '?')+1:],
		}}
	}

	return nil
}

func (c *Client) readPump() {
	defer func() {
		close(c.send)
		_ = c.conn.Close()
	}()

	for {
		deadline := time.Time{}
		if c.cfg.sessionTimeout > 0 {
			deadline = time.Now().Add(c.cfg.sessionTimeout)
		}
		_ = c.conn.SetReadDeadline(deadline)

		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		for _, reply := range c.handle(msg) {
			if !c.queue(reply) {
				return
			}
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))

		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveDrawSocket starts a session seeded from the request's query string and
// runs it for as long as the websocket stays open.
func serveDrawSocket(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		lists := draw.ParseLists(r.URL.Query(), cfg.defaults())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: Websocket upgrade from %s failed: %v", realIP(r), err)

			return
		}

		client := &Client{
			cfg:     cfg,
			conn:    conn,
			send:    make(chan any, 8),
			session: cfg.newSession(lists),
			page:    pageURL(cfg, r, path),
			qrPath:  cfg.prefix + path + "/qr",
		}

		logf(cfg, "GAMES: Session started for %s with %d participant(s) and %d outcome(s)",
			realIP(r), len(lists.Participants), len(lists.Outcomes))

		client.queue(client.sessionInfo())

		go client.writePump()
		client.readPump()

		logf(cfg, "GAMES: Session ended for %s", realIP(r))
	}
}

// serveShareQR encodes the share link for the lists in the query string.
func serveShareQR(cfg *Config, path string, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		lists := draw.ParseLists(r.URL.Query(), cfg.defaults())
		link := draw.ShareURL(pageURL(cfg, r, path), lists)

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

func servePresetList(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, http.StatusOK, map[string][]string{"presets": cfg.presets.Names()}, errs)
	}
}

// servePreset redirects to the share link of the named preset.
func servePreset(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		preset, err := cfg.presets.Get(ps.ByName("name"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		logf(cfg, "GAMES: Preset %q requested by %s", ps.ByName("name"), realIP(r))

		http.Redirect(w, r, draw.ShareURL(pageURL(cfg, r, path), preset), http.StatusSeeOther)
	}
}

// serveSelect picks an unused index for callers that keep their own session
// state.
func serveSelect(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req selectRequest

		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "invalid request body"}, errs)
			return
		}

		consumed := make(map[int]bool, len(req.Consumed))
		for _, i := range req.Consumed {
			if i < 0 || i >= len(req.Candidates) {
				writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "consumed index out of range"}, errs)
				return
			}
			consumed[i] = true
		}

		if len(draw.Available(req.Candidates, consumed)) == 0 {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "no candidates left to select"}, errs)
			return
		}

		writeJSON(cfg, w, http.StatusOK, selectResponse{
			Index: draw.SelectIndex(req.Candidates, consumed, cfg.intn),
		}, errs)
	}
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any, errs chan<- error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs <- err
	}
}

// registerDrawGame sets up routes so that:
//   - $path                  → HTML client
//   - $path/ws               → websocket owning one draw session
//   - $path/qr               → PNG QR code of the share link for the query
//   - $path/presets          → JSON list of preset names
//   - $path/presets/:name    → redirect to the preset's share link
//   - $path/api/select       → stateless selector
func registerDrawGame(cfg *Config, path string, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+path, serveDrawPage(cfg, path, errs))

	mux.GET(cfg.prefix+path+"/ws", serveDrawSocket(cfg, path))

	mux.GET(cfg.prefix+path+"/qr", serveShareQR(cfg, path, errs))

	mux.GET(cfg.prefix+path+"/presets", servePresetList(cfg, errs))
	mux.GET(cfg.prefix+path+"/presets/:name", servePreset(cfg, path))

	mux.POST(cfg.prefix+path+"/api/select", serveSelect(cfg, errs))
}
