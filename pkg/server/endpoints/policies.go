package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/server"
)

// RegisterPoliciesEndpoints registers the policy and retention schedule
// endpoints
func RegisterPoliciesEndpoints(s *server.Server, r *mux.Router) {
	r.HandleFunc("/policies", handleListPolicies(s)).Methods("GET")
	r.HandleFunc("/policies", handleCreatePolicy(s)).Methods("POST")
	r.HandleFunc("/policies/{id}", handleGetPolicy(s)).Methods("GET")
	r.HandleFunc("/policies/{id}", handleReplacePolicy(s)).Methods("PUT")
	r.HandleFunc("/policies/{id}", handleDeletePolicy(s)).Methods("DELETE")

	r.HandleFunc("/schedules", handleListSchedules(s)).Methods("GET")
	r.HandleFunc("/schedules", handleCreateSchedule(s)).Methods("POST")
	r.HandleFunc("/schedules/{id}", handleDeleteSchedule(s)).Methods("DELETE")
}

func handleListPolicies(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Service.Policies())
	}
}

// handleGetPolicy returns the policy, or its bare text when the client asks
// for text/plain.
func handleGetPolicy(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if r.Header.Get("Accept") == "text/plain" {
			text, err := s.Service.PolicyText(r.Context(), caller(r), id)
			if err != nil {
				respondWithServiceError(w, s.Logger, err)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(text))
			return
		}

		for _, p := range s.Service.Policies() {
			if p.ID == id {
				respondWithJSON(w, http.StatusOK, p)
				return
			}
		}
		respondWithError(w, http.StatusNotFound, "policy not found")
	}
}

func handleCreatePolicy(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.Policy
		if !decodeJSON(w, r, &p) {
			return
		}

		created, err := s.Service.CreatePolicy(r.Context(), caller(r), p)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleReplacePolicy(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.Policy
		if !decodeJSON(w, r, &p) {
			return
		}
		p.ID = mux.Vars(r)["id"]

		updated, err := s.Service.UpdatePolicy(r.Context(), caller(r), p)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	}
}

func handleDeletePolicy(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.DeletePolicy(r.Context(), caller(r), mux.Vars(r)["id"]); err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListSchedules(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Service.Schedules())
	}
}

func handleCreateSchedule(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sch model.RetentionSchedule
		if !decodeJSON(w, r, &sch) {
			return
		}

		created, err := s.Service.CreateSchedule(r.Context(), caller(r), sch)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleDeleteSchedule(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.DeleteSchedule(r.Context(), caller(r), mux.Vars(r)["id"]); err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
