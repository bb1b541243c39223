package endpoints

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/server"
)

// SyncResponse reports one connector sync.
type SyncResponse struct {
	Connector  model.Connector        `json:"connector"`
	Discovered []model.DocumentRecord `json:"discovered"`
	Skipped    bool                   `json:"skipped,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// RegisterConnectorsEndpoints registers the connector endpoints
func RegisterConnectorsEndpoints(s *server.Server, r *mux.Router) {
	r.HandleFunc("/connectors", handleListConnectors(s)).Methods("GET")
	r.HandleFunc("/connectors", handleAddConnector(s)).Methods("POST")
	r.HandleFunc("/connectors/{id}", handleUpdateConnector(s)).Methods("PATCH")
	r.HandleFunc("/connectors/{id}", handleDeleteConnector(s)).Methods("DELETE")
	r.HandleFunc("/connectors/{id}/sync", handleSyncConnector(s)).Methods("POST")
	r.HandleFunc("/connectors/{id}/pause", handleTransition(s, s.Connectors.Pause)).Methods("POST")
	r.HandleFunc("/connectors/{id}/resume", handleTransition(s, s.Connectors.Resume)).Methods("POST")
}

func handleListConnectors(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Connectors.Connectors())
	}
}

func handleAddConnector(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c model.Connector
		if !decodeJSON(w, r, &c) {
			return
		}

		created, err := s.Connectors.Add(r.Context(), caller(r), c)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleUpdateConnector(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.ConnectorPatch
		if !decodeJSON(w, r, &patch) {
			return
		}

		updated, err := s.Connectors.Update(r.Context(), caller(r), mux.Vars(r)["id"], patch)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteConnector(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Connectors.Delete(r.Context(), caller(r), mux.Vars(r)["id"]); err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSyncConnector answers 200 even when discovery failed: the failure
// is part of the connector state and is reported in the body.
func handleSyncConnector(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Connectors.Sync(r.Context(), caller(r), mux.Vars(r)["id"])
		if err != nil && res.Connector.ID == "" {
			respondWithServiceError(w, s.Logger, err)
			return
		}

		body := SyncResponse{
			Connector:  res.Connector,
			Discovered: res.Discovered,
			Skipped:    res.Skipped,
		}
		if body.Discovered == nil {
			body.Discovered = []model.DocumentRecord{}
		}
		if err != nil {
			body.Error = res.Connector.LastErrorMessage
		}
		respondWithJSON(w, http.StatusOK, body)
	}
}

type transitionFunc func(ctx context.Context, caller *identity.Identity, id string) (model.Connector, error)

func handleTransition(s *server.Server, transition transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := transition(r.Context(), caller(r), mux.Vars(r)["id"])
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, c)
	}
}
