// Package stream exposes the live tick stream over SSE and WebSocket.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/match"
	"matchpulse/internal/metrics"
	svcstream "matchpulse/internal/services/stream"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

// Handler serves one tick stream per connection. Each connection gets
// its own generator run; resume is driven by the client's last seen
// event id.
type Handler struct {
	generators map[account.Platform]*svcstream.Generator
	matches    match.Repository
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

func NewHandler(generators map[account.Platform]*svcstream.Generator, matches match.Repository) *Handler {
	return &Handler{
		generators: generators,
		matches:    matches,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Stream is read-only public data, no origin restriction
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.Get().With("component", "stream_api"),
	}
}

// parseRequest builds the generator request from query params and, for
// SSE, the Last-Event-ID reconnect header
func (h *Handler) parseRequest(r *http.Request) (svcstream.Request, *svcstream.Generator, error) {
	q := r.URL.Query()

	matchID := q.Get("matchId")
	if matchID == "" {
		return svcstream.Request{}, nil, errors.Wrap(errors.ErrInvalidInput, "matchId is required")
	}

	platform := account.Platform(q.Get("platform"))
	gen, ok := h.generators[platform]
	if !ok {
		return svcstream.Request{}, nil, errors.Wrapf(errors.ErrUnknownPlatform, "%q", platform)
	}

	fixture, err := h.matches.GetByID(r.Context(), matchID)
	if err != nil {
		return svcstream.Request{}, nil, err
	}

	req := svcstream.Request{
		MatchID:         fixture.ID,
		Platform:        platform,
		KickoffISO:      fixture.KickoffISO,
		FinalWhistleISO: fixture.FinalWhistleISO,
		LiveDurationMin: fixture.LiveDurationMin,
		PhaseOverride:   match.Phase(q.Get("phase")),
	}

	lastID := r.Header.Get("Last-Event-ID")
	if lastID == "" {
		lastID = q.Get("lastEventId")
	}
	if lastID != "" {
		parsed, err := strconv.ParseInt(lastID, 10, 64)
		if err != nil || parsed < 0 {
			return svcstream.Request{}, nil, errors.Wrapf(errors.ErrInvalidInput, "bad last event id %q", lastID)
		}
		req.LastEventID = parsed
	}

	return req, gen, nil
}

// HandleSSE streams frames as server-sent events. Heartbeats go out as
// comment lines so they reset proxy idle timers without growing the
// client's event log.
func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	req, gen, err := h.parseRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	connID := uuid.NewString()
	log := h.log.With("conn_id", connID, "match_id", req.MatchID, "transport", "sse")
	log.Info("Stream opened", "resume_from", req.LastEventID)

	metrics.StreamConnections.WithLabelValues("sse").Inc()
	defer metrics.StreamConnections.WithLabelValues("sse").Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for frame := range gen.Run(r.Context(), req) {
		if frame.Type == svcstream.FrameHeartbeat {
			fmt.Fprint(w, ": hb\n\n")
			flusher.Flush()
			continue
		}

		data, err := json.Marshal(frame.Data)
		if err != nil {
			log.Errorf("Frame marshal failed: %v", err)
			continue
		}
		if frame.Type == svcstream.FrameTick {
			fmt.Fprintf(w, "id: %d\n", frame.ID)
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Type, data)
		flusher.Flush()
	}

	log.Info("Stream closed")
}

// wsFrame is the JSON envelope WebSocket clients receive. Heartbeats are
// delivered as frames here; there is no comment channel to hide them in.
type wsFrame struct {
	Type string          `json:"type"`
	ID   int64           `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HandleWebSocket streams the same frame sequence over a WebSocket
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	req, gen, err := h.parseRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	connID := uuid.NewString()
	log := h.log.With("conn_id", connID, "match_id", req.MatchID, "transport", "websocket")
	log.Info("Stream opened", "resume_from", req.LastEventID)

	metrics.StreamConnections.WithLabelValues("websocket").Inc()
	defer metrics.StreamConnections.WithLabelValues("websocket").Dec()

	for frame := range gen.Run(r.Context(), req) {
		out := wsFrame{Type: string(frame.Type), ID: frame.ID}
		if frame.Data != nil {
			data, err := json.Marshal(frame.Data)
			if err != nil {
				log.Errorf("Frame marshal failed: %v", err)
				continue
			}
			out.Data = data
		}
		if err := conn.WriteJSON(out); err != nil {
			log.Info("Client gone", "error", err.Error())
			return
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"))
	log.Info("Stream closed")
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrInvalidInput), errors.Is(err, errors.ErrUnknownPlatform):
		code = http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		code = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
