package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/server"
)

// LegalHoldRequest carries the reason recorded with a hold change.
type LegalHoldRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DisposalDateRequest names the schedule to compute from. An empty id uses
// the record's own schedule.
type DisposalDateRequest struct {
	ScheduleID string `json:"scheduleId,omitempty"`
}

// RegisterRecordsEndpoints registers the record endpoints
func RegisterRecordsEndpoints(s *server.Server, r *mux.Router) {
	r.HandleFunc("/records", handleListRecords(s)).Methods("GET")
	r.HandleFunc("/records", handleCreateRecord(s)).Methods("POST")
	r.HandleFunc("/records/{id}", handleGetRecord(s)).Methods("GET")
	r.HandleFunc("/records/{id}", handleUpdateRecord(s)).Methods("PATCH")
	r.HandleFunc("/records/{id}", handleDisposeRecord(s)).Methods("DELETE")
	r.HandleFunc("/records/{id}/hold", handleLegalHold(s, true)).Methods("POST")
	r.HandleFunc("/records/{id}/hold", handleLegalHold(s, false)).Methods("DELETE")
	r.HandleFunc("/records/{id}/disposal-date", handleDisposalDate(s)).Methods("POST")
}

func handleListRecords(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := s.Service.Records()
		if source := r.URL.Query().Get("source"); source != "" {
			filtered := records[:0:0]
			for _, rec := range records {
				if rec.Source == source {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}
		respondWithJSON(w, http.StatusOK, records)
	}
}

func handleGetRecord(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := s.Service.Record(mux.Vars(r)["id"])
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, rec)
	}
}

func handleCreateRecord(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec model.DocumentRecord
		if !decodeJSON(w, r, &rec) {
			return
		}

		created, err := s.Service.CreateRecord(r.Context(), caller(r), rec)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleUpdateRecord(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.RecordPatch
		if !decodeJSON(w, r, &patch) {
			return
		}

		updated, err := s.Service.UpdateRecord(r.Context(), caller(r), mux.Vars(r)["id"], patch)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	}
}

func handleDisposeRecord(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cert, err := s.Service.DisposeRecord(r.Context(), caller(r), mux.Vars(r)["id"])
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, cert)
	}
}

func handleLegalHold(s *server.Server, hold bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LegalHoldRequest
		if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
			return
		}

		rec, err := s.Service.SetLegalHold(r.Context(), caller(r), mux.Vars(r)["id"], hold, req.Reason)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, rec)
	}
}

func handleDisposalDate(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DisposalDateRequest
		if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
			return
		}

		rec, err := s.Service.ComputeDisposalDate(r.Context(), caller(r), mux.Vars(r)["id"], req.ScheduleID)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, rec)
	}
}
