// Package handlers provides HTTP handlers for the tracking views.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/tracking"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

const (
	contentTypeMsgpack = "application/msgpack"
	writeWait          = 10 * time.Second
	maxMessageBytes    = 4096
)

// Handler handles tracking HTTP requests
type Handler struct {
	service        *tracking.Service
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new tracking handler. originPatterns are the hosts
// allowed to open the selection websocket from a browser.
func NewHandler(service *tracking.Service, originPatterns []string, log zerolog.Logger) *Handler {
	return &Handler{
		service:        service,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "tracking").Logger(),
	}
}

// SelectRequest is the websocket selection message.
type SelectRequest struct {
	Index string `json:"index"`
}

// HandleGetIndices handles GET /api/tracking/indices
func (h *Handler) HandleGetIndices(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, tracking.Selections())
}

// HandleGetOverview handles GET /api/tracking/overview
func (h *Handler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.Overview())
}

// HandleSelect handles GET /api/tracking/select?index=X
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.SelectByName(r.URL.Query().Get("index")))
}

// HandleGetView handles GET /api/tracking/{index}
func (h *Handler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.SelectByName(chi.URLParam(r, "index")))
}

// HandleGetSummary handles GET /api/tracking/{index}/summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	idx := domain.ParseTrackedIndex(chi.URLParam(r, "index"))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(h.service.Summary(idx))); err != nil {
		h.log.Error().Err(err).Msg("Failed to write summary")
	}
}

// HandleWebSocket handles GET /api/tracking/ws. The current default view is
// pushed on connect; every {"index": "..."} message is answered with the view
// of that selection.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// lift the server read/write timeouts for the lifetime of the socket
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")
	conn.SetReadLimit(maxMessageBytes)

	ctx := r.Context()
	log := h.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("Selection socket opened")

	initial := h.service.Select(domain.DefaultSelection)
	if err := h.writeFrame(ctx, conn, envelope(initial, initial.SnapshotID)); err != nil {
		log.Debug().Err(err).Msg("Failed to send initial view")
		return
	}

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				conn.Close(websocket.StatusNormalClosure, "")
				log.Debug().Msg("Selection socket closed")
			} else if ctx.Err() == nil {
				log.Warn().Err(err).Msg("Selection socket read failed")
			}
			return
		}

		if msgType != websocket.MessageText {
			if err := h.writeFrame(ctx, conn, errorFrame("text frames only")); err != nil {
				return
			}
			continue
		}

		req, err := decodeSelectRequest(data)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected selection message")
			if err := h.writeFrame(ctx, conn, errorFrame(err.Error())); err != nil {
				return
			}
			continue
		}

		view := h.service.SelectByName(req.Index)
		if err := h.writeFrame(ctx, conn, envelope(view, view.SnapshotID)); err != nil {
			log.Debug().Err(err).Msg("Failed to send view")
			return
		}
	}
}

func decodeSelectRequest(data []byte) (SelectRequest, error) {
	var req SelectRequest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid selection message: %w", err)
	}
	if strings.TrimSpace(req.Index) == "" {
		return req, errors.New("invalid selection message: index is required")
	}
	return req, nil
}

func errorFrame(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

func (h *Handler) writeFrame(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (h *Handler) snapshotID() string {
	if snap := h.service.Snapshot(); snap != nil {
		return snap.ID
	}
	return ""
}

func envelope(data interface{}, snapshotID string) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp":   time.Now().Format(time.RFC3339),
			"snapshot_id": snapshotID,
		},
	}
}

// respond writes data in the standard envelope, as msgpack when the client asks for it.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	body := envelope(data, h.snapshotID())
	if wantsMsgpack(r) {
		h.writeMsgpack(w, status, body)
		return
	}
	h.writeJSON(w, status, body)
}

func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, contentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeMsgpack(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode msgpack response")
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Error().Err(err).Msg("Failed to write msgpack response")
	}
}
