package endpoints

import (
	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/server"
	"github.com/cyberarian/rekama-sys/pkg/server/middleware"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(s *server.Server) {
	RegisterStatusEndpoints(s)
	RegisterSessionEndpoints(s)

	protected := authenticated(s)
	RegisterSessionRoutes(s, protected)
	RegisterRecordsEndpoints(s, protected)
	RegisterPoliciesEndpoints(s, protected)
	RegisterConnectorsEndpoints(s, protected)
	RegisterUsersEndpoints(s, protected)
	RegisterSystemEndpoints(s, protected)
}

// authenticated returns an /api subrouter behind the session middleware.
// Path-less subrouters match every request, so routes registered on it must
// be added after the public ones.
func authenticated(s *server.Server) *mux.Router {
	auth := middleware.NewSessionAuthenticator(s.Sessions, s.Tokens)
	r := s.API.NewRoute().Subrouter()
	r.Use(auth.Middleware)
	return r
}
