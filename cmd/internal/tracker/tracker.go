package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"fouron4/cmd/internal/session"
)

const (
	updateQueueSize = 64
	maxReadBytes    = 1 << 20
)

// ErrUnauthorized is returned when the handshake is rejected even after a
// token refresh.
var ErrUnauthorized = errors.New("trip stream rejected the token")

// Update is one frame from the trip channel.
type Update struct {
	TripID string    `json:"tripId"`
	Status string    `json:"status"`
	Lat    float64   `json:"lat"`
	Lng    float64   `json:"lng"`
	ETA    string    `json:"eta,omitempty"`
	TS     time.Time `json:"ts,omitzero"`
}

// Watcher is a live subscription to one trip's updates.
//
// Updates is closed when the stream ends; Err reports why. Close is
// idempotent and never closes Updates from the caller's side.
type Watcher struct {
	log  *slog.Logger
	conn *websocket.Conn

	updates chan Update
	done    chan struct{}

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Config locates the trip stream.
type Config struct {
	// BaseURL is the websocket origin, e.g. "wss://api.4on4.app".
	BaseURL string
}

// Watch dials the stream for tripID and starts the read loop. The handshake
// carries the store's current bearer token; a 401 handshake triggers one
// refresh through the store and one redial.
func Watch(ctx context.Context, cfg Config, log *slog.Logger, store *session.Store, tripID string) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	if !store.Current().Valid() {
		return nil, ErrUnauthorized
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/ws/trips/" + tripID

	conn, err := dial(ctx, url, store.Current().AccessToken)
	if errors.Is(err, ErrUnauthorized) {
		log.Info("tracker.handshake.retry", "trip_id", tripID)
		if !store.Refresh(ctx) {
			return nil, ErrUnauthorized
		}
		conn, err = dial(ctx, url, store.Current().AccessToken)
	}
	if err != nil {
		return nil, err
	}

	conn.SetReadLimit(maxReadBytes)

	w := &Watcher{
		log:     log,
		conn:    conn,
		updates: make(chan Update, updateQueueSize),
		done:    make(chan struct{}),
	}
	go w.readLoop(ctx, tripID)
	return w, nil
}

func dial(ctx context.Context, url, token string) (*websocket.Conn, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("dial trip stream: %w", err)
	}
	return conn, nil
}

// Updates returns the stream of decoded frames.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Err reports why the stream ended. Valid after Updates is closed.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close tears the stream down. Idempotent.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		_ = w.conn.Close(websocket.StatusNormalClosure, "bye")
	})
}

func (w *Watcher) readLoop(ctx context.Context, tripID string) {
	defer close(w.updates)

	for {
		mt, data, err := w.conn.Read(ctx)
		if err != nil {
			select {
			case <-w.done:
				// Caller-initiated close, not an error.
			default:
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
					w.setErr(err)
					w.log.Info("tracker.read.fail", "trip_id", tripID,
						"close_status", websocket.CloseStatus(err), "err", err)
				}
				w.Close()
			}
			return
		}

		if mt != websocket.MessageText && mt != websocket.MessageBinary {
			continue
		}

		var upd Update
		if err := json.Unmarshal(data, &upd); err != nil {
			w.log.Warn("tracker.frame.bad", "trip_id", tripID, "err", err)
			continue
		}

		select {
		case w.updates <- upd:
		case <-w.done:
			return
		default:
			// Slow consumer: drop the frame, the next one supersedes it.
			w.log.Debug("tracker.frame.drop", "trip_id", tripID)
		}
	}
}

func (w *Watcher) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
