// Package dashboard is the live status dashboard: a read-only HTTP view over
// the Score Aggregator, meaningful only in watch mode (batch mode exits
// before anyone could connect). It never distributes judging work over the
// network — that remains an explicit non-goal.
//
// Routing and middleware are adapted from the teacher's chi wiring
// (api/cmd/server/main.go, api/internal/middleware/middleware.go); the
// websocket push model (a per-connection outbound channel drained by a
// sender goroutine, mutex-guarded against a racing close) is adapted from
// api/internal/handler/websocket.go's WebSocketConnection/eventSender.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"cpjudge/internal/scoreboard"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ScoreUpdate is pushed over the websocket every time a watch-mode job
// finishes judging.
type ScoreUpdate struct {
	User    string  `json:"user"`
	Problem string  `json:"problem"`
	Score   float64 `json:"score"`
}

// Dashboard serves the scoreboard snapshot and fans out score updates to
// connected websocket clients.
type Dashboard struct {
	Board *scoreboard.Board
	Log   *logrus.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn   *websocket.Conn
	outbox chan ScoreUpdate
	once   sync.Once
}

// New builds a Dashboard over board. log must not be nil.
func New(board *scoreboard.Board, log *logrus.Logger) *Dashboard {
	return &Dashboard{Board: board, Log: log, clients: make(map[*client]struct{})}
}

// Router builds the chi mux: GET /scoreboard (JSON snapshot) and
// GET /ws (score-delta push).
func (d *Dashboard) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recovery())
	r.Use(Logger(d.Log))
	r.Use(CORS())
	r.Get("/scoreboard", d.handleScoreboard)
	r.Get("/ws", d.handleWebSocket)
	return r
}

// ListenAndServe starts the HTTP server on addr, blocking until ctx is
// cancelled or the server fails.
func (d *Dashboard) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: d.Router()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (d *Dashboard) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	snapshot := d.Board.Snapshot()
	rows := make([]ScoreUpdate, 0, len(snapshot))
	for k, v := range snapshot {
		rows = append(rows, ScoreUpdate{User: k.User, Problem: k.Problem, Score: v})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.Log.WithError(err).Error("dashboard websocket upgrade failed")
		return
	}

	c := &client{conn: conn, outbox: make(chan ScoreUpdate, 64)}
	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()

	go d.sendLoop(c)

	// The dashboard is push-only; drain and discard anything the client
	// sends so a dead/closing connection is detected promptly.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	d.removeClient(c)
}

func (d *Dashboard) sendLoop(c *client) {
	for update := range c.outbox {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(update); err != nil {
			d.removeClient(c)
			return
		}
	}
}

func (d *Dashboard) removeClient(c *client) {
	d.mu.Lock()
	if _, ok := d.clients[c]; ok {
		delete(d.clients, c)
		c.once.Do(func() { close(c.outbox) })
	}
	d.mu.Unlock()
	_ = c.conn.Close()
}

// Notify pushes a score update to every connected websocket client. Call
// this after every watch-mode job finishes judging.
func (d *Dashboard) Notify(user, problem string, score float64) {
	update := ScoreUpdate{User: user, Problem: problem, Score: score}
	d.mu.Lock()
	defer d.mu.Unlock()
	for c := range d.clients {
		select {
		case c.outbox <- update:
		default:
			d.Log.Warn("dashboard client outbox full, dropping update")
		}
	}
}
