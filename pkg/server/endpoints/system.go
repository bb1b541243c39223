package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/server"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// StatusResponse is served by GET /api/status.
type StatusResponse struct {
	Status   string       `json:"status"`
	Storage  store.Status `json:"storage"`
	Sessions int          `json:"sessions"`
}

// ResetRequest must carry store.ResetConfirmation.
type ResetRequest struct {
	Confirm string `json:"confirm"`
}

// RegisterStatusEndpoints registers the unauthenticated status endpoint
func RegisterStatusEndpoints(s *server.Server) {
	s.API.HandleFunc("/status", handleStatus(s)).Methods("GET")
}

// RegisterSystemEndpoints registers logs, export, import and reset
func RegisterSystemEndpoints(s *server.Server, r *mux.Router) {
	r.HandleFunc("/logs", handleLogs(s)).Methods("GET")
	r.HandleFunc("/export", handleExport(s)).Methods("GET")
	r.HandleFunc("/import", handleImport(s)).Methods("POST")
	r.HandleFunc("/reset", handleReset(s)).Methods("POST")
}

// handleStatus answers 503 while snapshots are failing so that load
// balancers stop routing writes here.
func handleStatus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{Status: "ok", Storage: s.Service.Status()}
		if s.Sessions != nil {
			resp.Sessions = s.Sessions.Len()
		}
		code := http.StatusOK
		if resp.Storage.Degraded {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, resp)
	}
}

// handleLogs returns the newest entries. ?format=digest returns the plain
// text digest instead.
func handleLogs(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "digest" {
			digest, err := s.Service.LogDigest(caller(r))
			if err != nil {
				respondWithServiceError(w, s.Logger, err)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(digest))
			return
		}

		logs, err := s.Service.Logs(caller(r))
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, logs)
	}
}

func handleExport(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := s.Service.Export(r.Context(), caller(r))
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="rekama-export-`+exp.ExportedAt.Format("20060102T150405Z")+`.json"`)
		respondWithJSON(w, http.StatusOK, exp)
	}
}

func handleImport(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var exp store.Export
		if !decodeJSONLimit(w, r, &exp, maxImportBytes) {
			return
		}
		if err := s.Service.Import(r.Context(), caller(r), exp); err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleReset(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Service.FactoryReset(r.Context(), caller(r), req.Confirm); err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
