package stubserver

import (
	"crypto/subtle"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/sessprobe-go/internal/protocol"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
	"github.com/yndnr/sessprobe-go/pkg/cmap"
	"github.com/yndnr/sessprobe-go/pkg/token"
)

// session is the per-token record in the handler's session table. The
// table only ever holds live sessions; LOGOUT removes the record.
type session struct {
	loginAt time.Time
}

// Handler implements the POST /endpoint contract.
//
// Sessions live in a sharded concurrent map keyed by token, so
// concurrent requests for distinct tokens never contend on one lock.
type Handler struct {
	apiKey      []byte
	sessions    *cmap.Map[session]
	failureRate float64
	logger      logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHandler creates the endpoint handler. failureRate in (0, 1]
// simulates backing-service unavailability on that fraction of LOGIN
// and ACTION requests.
func NewHandler(apiKey string, failureRate float64, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		apiKey:      []byte(apiKey),
		sessions:    cmap.New[session](),
		failureRate: failureRate,
		logger:      log,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ActiveSessions returns the number of live sessions.
func (h *Handler) ActiveSessions() int {
	return h.sessions.Count()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Api-Key")
	if key == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if subtle.ConstantTimeCompare([]byte(key), h.apiKey) != 1 {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, "malformed request body")
		return
	}
	tok := r.PostFormValue("token")

	if !token.Validate(tok) {
		h.writeError(w, "invalid token format")
		return
	}

	action, err := protocol.ParseAction(r.PostFormValue("action"))
	if err != nil {
		h.writeError(w, "unknown action")
		return
	}

	switch action {
	case protocol.ActionLogin:
		h.login(w, tok)
	case protocol.ActionDo:
		h.act(w, tok)
	case protocol.ActionLogout:
		h.logout(w, tok)
	}
}

func (h *Handler) login(w http.ResponseWriter, tok string) {
	if h.backingDown() {
		h.writeError(w, "backing service unavailable")
		return
	}
	h.sessions.Set(tok, session{loginAt: time.Now()})
	h.writeOK(w)
}

func (h *Handler) act(w http.ResponseWriter, tok string) {
	if !h.sessions.Has(tok) {
		h.writeError(w, "no active session for token")
		return
	}
	if h.backingDown() {
		h.writeError(w, "backing service unavailable")
		return
	}
	h.writeOK(w)
}

func (h *Handler) logout(w http.ResponseWriter, tok string) {
	if _, ok := h.sessions.Pop(tok); !ok {
		h.writeError(w, "token not found")
		return
	}
	h.writeOK(w)
}

// backingDown draws the simulated backing-service failure.
func (h *Handler) backingDown() bool {
	if h.failureRate <= 0 {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64() < h.failureRate
}

func (h *Handler) writeOK(w http.ResponseWriter) {
	h.writeJSON(w, protocol.Response{Result: protocol.ResultOK})
}

func (h *Handler) writeError(w http.ResponseWriter, msg string) {
	h.writeJSON(w, protocol.Response{Result: protocol.ResultError, Message: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, resp protocol.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("response encoding failed", "error", err)
	}
}

// adminHandler answers the dependency double's admin probe.
func adminHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
}
