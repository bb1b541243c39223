// Package server provides the HTTP server for the records governance API.
//
// The server uses gorilla/mux for routing and gorilla/handlers for the
// access log. Requests under /api carry a bearer session token issued by
// POST /api/session; the middleware subpackage resolves it to the live
// session identity.
//
// # Server Setup
//
//	srv := server.NewServer(server.Options{
//	    Service:    svc,
//	    Connectors: engine,
//	    Sessions:   sessions,
//	    Tokens:     tokens,
//	    Metrics:    m,
//	}, "127.0.0.1", "8080")
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// # Endpoints
//
// Handlers are registered by the endpoints subpackage:
//
//   - /api/session - login, identity switch and logout
//   - /api/records - records, legal hold, disposal dates and disposition
//   - /api/policies, /api/schedules - governance documents
//   - /api/connectors - repository connectors and sync
//   - /api/users, /api/settings - administration
//   - /api/logs, /api/export, /api/reset, /api/status - system
//   - /metrics - Prometheus scrape endpoint
package server
