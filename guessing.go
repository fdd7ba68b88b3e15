// Guessbox websocket transport
//
// Every browser tab holds one websocket at /ws. The connection gets a fresh
// uuid, which doubles as the player id for whatever room it creates or joins,
// so a reconnect is a new player. All game logic lives in games/guessing; this
// file only moves JSON between sockets and the dispatcher.
//
// Routes:
// - /ws              websocket for create/join and all in-room actions
// - /room/:code      share page for a room code
// - /room/:code/qr   PNG QR code pointing at the share page, backed by go-qrcode

package main

import (
	"encoding/json"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/guessbox/games/guessing"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. It satisfies guessing.Session.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan guessing.ServerMessage

	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan guessing.ServerMessage, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Deliver never blocks; a full buffer means the client is too slow to keep.
func (c *Client) Deliver(msg guessing.ServerMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) readPump(cfg *Config, d *guessing.Dispatcher) {
	defer func() {
		d.Unregister(c.id)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logf(cfg, "SOCKET: Connection %s closed unexpectedly: %v", c.id, err)
			}
			return
		}

		var msg guessing.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.Deliver(guessing.ServerMessage{
				Type: guessing.MsgError,
				Data: guessing.ErrorPayload{Message: "malformed message", Kind: guessing.ErrorKind(guessing.ErrValidation)},
			})
			continue
		}

		if !d.Submit(c.id, msg) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.send:
					if err := c.write(msg); err != nil {
						return
					}
					continue
				default:
				}
				break
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(msg guessing.ServerMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func serveWS(cfg *Config, d *guessing.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := newClient(conn)
		if !d.Register(client) {
			_ = conn.Close()
			return
		}

		logf(cfg, "SOCKET: Connection %s opened from %s", client.id, realIP(r))

		go client.writePump()
		client.readPump(cfg, d)
	}
}

// serveRoomPage names the room so it can be shared; joining happens over /ws.
func serveRoomPage(cfg *Config, path string, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		code := guessing.NormalizeCode(ps.ByName("code"))
		escaped := html.EscapeString(code)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		body := "Room " + escaped + `<br><img alt="QR code for room ` + escaped + `" src="` +
			cfg.prefix + path + "/" + escaped + `/qr">`

		written, err := w.Write([]byte(newPage("Room "+code, body)))
		if err != nil {
			errs <- err

			return
		}

		logServed(cfg, "Room page", written, r, startTime)
	}
}

// requestScheme trusts X-Forwarded-Proto only when it names http or https.
func requestScheme(r *http.Request) string {
	switch proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto {
	case "http", "https":
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// qrHandler generates a PNG QR code for the room page using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		code := guessing.NormalizeCode(ps.ByName("code"))
		if code == "" {
			http.Error(w, "missing room code", http.StatusBadRequest)
			return
		}

		scheme := requestScheme(r)

		path := strings.TrimSuffix(r.URL.Path, "/qr")
		path = strings.TrimSuffix(path, ps.ByName("code")) + code

		const qrSize = 320
		png, err := qrcode.Encode(scheme+"://"+r.Host+path, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		written, err := w.Write(png)
		if err != nil {
			return
		}

		logServed(cfg, "QR code", written, r, startTime)
	}
}

// registerGuessingGame sets up routes so that:
//   - /ws                   → websocket for every connection
//   - $path/:code           → share page for a room
//   - $path/:code/qr        → PNG QR code for that page
func registerGuessingGame(cfg *Config, path string, mux *httprouter.Router, d *guessing.Dispatcher, errs chan<- error) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, d))

	mux.GET(cfg.prefix+path+"/:code", serveRoomPage(cfg, path, errs))

	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler(cfg))
}
