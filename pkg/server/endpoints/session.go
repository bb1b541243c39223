package endpoints

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/server"
)

// LoginRequest starts a session for a registered user.
type LoginRequest struct {
	UserID string `json:"userId"`
}

// SessionResponse carries a bearer token and the identity it stands for.
type SessionResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Identity  *identity.Identity `json:"identity"`
}

// RegisterSessionEndpoints registers login on the public router. Switch and
// logout need a session and are registered by RegisterSessionRoutes.
func RegisterSessionEndpoints(s *server.Server) {
	s.API.HandleFunc("/session", handleLogin(s)).Methods("POST")
}

// RegisterSessionRoutes registers the session routes that need a session.
func RegisterSessionRoutes(s *server.Server, r *mux.Router) {
	r.HandleFunc("/session", handleWhoami()).Methods("GET")
	r.HandleFunc("/session", handleLogout(s)).Methods("DELETE")
	r.HandleFunc("/session/switch", handleSwitch(s)).Methods("POST")
}

func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		id, err := s.Sessions.Login(r.Context(), req.UserID, s.ClientIP(r))
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		issueToken(w, s, http.StatusCreated, id)
	}
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, caller(r))
	}
}

func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Sessions.Logout(r.Context(), caller(r).SessionID); err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSwitch(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		id, err := s.Sessions.Switch(r.Context(), caller(r).SessionID, req.UserID)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		issueToken(w, s, http.StatusOK, id)
	}
}

func issueToken(w http.ResponseWriter, s *server.Server, code int, id *identity.Identity) {
	token, expiresAt, err := s.Tokens.Issue(id)
	if err != nil {
		respondWithServiceError(w, s.Logger, err)
		return
	}
	respondWithJSON(w, code, SessionResponse{Token: token, ExpiresAt: expiresAt, Identity: id})
}
