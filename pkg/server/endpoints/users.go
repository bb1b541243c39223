package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/server"
)

// RegisterUsersEndpoints registers user and settings administration
func RegisterUsersEndpoints(s *server.Server, r *mux.Router) {
	r.HandleFunc("/users", handleListUsers(s)).Methods("GET")
	r.HandleFunc("/users", handleCreateUser(s)).Methods("POST")
	r.HandleFunc("/users/{id}", handleUpdateUser(s)).Methods("PUT")
	r.HandleFunc("/users/{id}", handleDeleteUser(s)).Methods("DELETE")

	r.HandleFunc("/settings", handleGetSettings(s)).Methods("GET")
	r.HandleFunc("/settings", handleUpdateSettings(s)).Methods("PUT")
}

func handleListUsers(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Service.Users())
	}
}

func handleCreateUser(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u model.UserProfile
		if !decodeJSON(w, r, &u) {
			return
		}

		created, err := s.Service.CreateUser(r.Context(), caller(r), u)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleUpdateUser(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u model.UserProfile
		if !decodeJSON(w, r, &u) {
			return
		}
		u.ID = mux.Vars(r)["id"]

		updated, err := s.Service.UpdateUser(r.Context(), caller(r), u)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteUser(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.DeleteUser(r.Context(), caller(r), mux.Vars(r)["id"]); err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetSettings(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Service.Settings())
	}
}

func handleUpdateSettings(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings model.AppSettings
		if !decodeJSON(w, r, &settings) {
			return
		}

		updated, err := s.Service.UpdateSettings(r.Context(), caller(r), settings)
		if err != nil {
			respondWithServiceError(w, s.Logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	}
}
