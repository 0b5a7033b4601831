package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/observe"
	"github.com/jonwraymond/trackerhealth/resilience"
)

// Stream event types.
const (
	EventOutcome = "outcome"
	EventReport  = "report"
	EventError   = "error"
)

const writeWait = 10 * time.Second

// Event is one message on /v1/stream.
type Event struct {
	Type    string          `json:"type"`
	CheckID string          `json:"check_id,omitempty"`
	Outcome *health.Outcome `json:"outcome,omitempty"`
	Report  *health.Report  `json:"report,omitempty"`
	Error   string          `json:"error,omitempty"`
}

var errHandshake = errors.New("server: websocket handshake failed")

// stream owns one websocket. Writes are serialized because a timed out
// check may still be sending when the handler reports the timeout.
type stream struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	responded bool
}

// upgrade switches the request to a websocket unless a response has
// already been written.
func (st *stream) upgrade(u *websocket.Upgrader, w http.ResponseWriter, r *http.Request) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.responded {
		return context.Canceled
	}
	st.responded = true

	conn, err := u.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", errHandshake, err)
	}
	st.conn = conn

	// Control frames are only processed while reading.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (st *stream) send(ev Event) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.conn == nil {
		return errHandshake
	}
	_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return st.conn.WriteJSON(ev)
}

// claim marks the response as written and reports whether the websocket
// is open.
func (st *stream) claim() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.responded = true
	return st.conn != nil
}

func (st *stream) close() {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.conn == nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = st.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = st.conn.Close()
}

// handleStream runs a check and streams its outcomes as they arrive.
//
// Errors found before any tracker is queried, and admission rejections,
// are plain HTTP responses. Once upgraded, the stream carries one outcome
// event per tracker and then a report event, or an error event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	client := clientKey(r)
	cfg := req.merge(s.defaults)

	st := &stream{}
	defer st.close()

	done := make(chan struct{})
	defer close(done)

	outcomes := make(chan health.Outcome)
	cfg.OnOutcome = func(o health.Outcome) {
		select {
		case outcomes <- o:
		case <-done:
		}
	}

	err = s.exec.Execute(r.Context(), client, cfg.Timeout, func(ctx context.Context) error {
		f := s.checker.CheckAsync(ctx, req.Source, cfg)
		select {
		case <-f.Done():
			// Outcomes are handed over before completion, so a Future
			// that is already done failed before querying anyone.
			if _, err := f.Result(); err != nil {
				return err
			}
		default:
		}

		if err := st.upgrade(&s.upgrader, w, r); err != nil {
			return err
		}
		for {
			select {
			case o := <-outcomes:
				// Outcomes of scrapes cut short by the budget are not sent.
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := st.send(Event{Type: EventOutcome, CheckID: f.ID(), Outcome: &o}); err != nil {
					return err
				}
			case <-f.Done():
				report, err := f.Result()
				if err != nil {
					return err
				}
				return st.send(Event{Type: EventReport, CheckID: f.ID(), Report: &report})
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	if err == nil {
		return
	}

	if errors.Is(err, errHandshake) {
		s.logger.Debug(r.Context(), "websocket upgrade failed", observe.F("error", err))
		return
	}
	if !st.claim() {
		s.writeCheckError(w, r, client, err)
		return
	}
	if errors.Is(err, resilience.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		_ = st.send(Event{Type: EventError, Error: err.Error()})
		return
	}
	s.logger.Debug(r.Context(), "stream ended early", observe.F("client", client), observe.F("error", err))
}
