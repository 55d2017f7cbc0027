package env

import (
	"encoding/json"
	"net/http"
	"sync"
)

type handler struct {
	mu  sync.Mutex
	env Environment
}

// NewHandler serves e over the bridge protocol used by Remote. Requests are
// serialized since environments are not safe for concurrent use.
func NewHandler(e Environment) http.Handler {
	h := &handler{env: e}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/state", h.state)
	mux.HandleFunc("/step", h.step)
	mux.HandleFunc("/reset", h.action(func() error { return h.env.Reset() }))
	mux.HandleFunc("/restart", h.action(func() error { return h.env.Restart() }))
	mux.HandleFunc("/close", h.action(func() error { return h.env.Close() }))
	return mux
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	state, err := h.env.State()
	h.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stateResponse{State: state})
}

func (h *handler) step(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	next, reward, done, err := h.env.Step(req.Action, req.State)
	h.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stepResponse{State: next, Reward: reward, Done: done})
}

func (h *handler) action(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.mu.Lock()
		err := fn()
		h.mu.Unlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
