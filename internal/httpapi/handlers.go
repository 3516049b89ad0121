package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/helldraft/helldraft/internal/engine"
	"github.com/helldraft/helldraft/internal/hub"
	"github.com/helldraft/helldraft/internal/lobby"
)

const maxImportBytes = 1 << 20

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createLobbyRequest struct {
	Solo   bool               `json:"solo"`
	Config *engine.GameConfig `json:"config"`
}

func CreateLobby(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLobbyRequest
		if r.Body != nil {
			_ = json.NewDecoder(io.LimitReader(r.Body, maxImportBytes)).Decode(&req)
		}
		var cfg engine.GameConfig
		if req.Config != nil {
			cfg = *req.Config
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *lobby.Lobby, 1)
			h.Inbox() <- hub.GetLobby{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			log.Info("collision on code, regenerating")
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.EnsureLobby{Code: code, State: engine.NewState(cfg, req.Solo), Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create lobby", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

// ExportState returns the lobby's full serialized state, the same payload
// every snapshot broadcast carries.
func ExportState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := lookupLobby(h, chi.URLParam(r, "code"))
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}
		reply := make(chan lobby.View, 1)
		lb.Inbox() <- lobby.GetState{Reply: reply}
		select {
		case view := <-reply:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(view.Payload)
		case <-time.After(2 * time.Second):
			http.Error(w, "lobby unresponsive", http.StatusServiceUnavailable)
		}
	}
}

// ImportState replaces the lobby's state wholesale with a previously
// exported snapshot and rebroadcasts it as canonical.
func ImportState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := lookupLobby(h, chi.URLParam(r, "code"))
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		reply := make(chan error, 1)
		lb.Inbox() <- lobby.ReplaceState{Payload: payload, Reply: reply}
		select {
		case err := <-reply:
			if err != nil {
				http.Error(w, "bad snapshot: "+err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case <-time.After(2 * time.Second):
			http.Error(w, "lobby unresponsive", http.StatusServiceUnavailable)
		}
	}
}

func lookupLobby(h *hub.Hub, code string) *lobby.Lobby {
	if code == "" {
		return nil
	}
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
