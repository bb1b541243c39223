// Package identity tracks who is acting on the record store.
//
// An Identity is the explicit session context passed to every governance
// operation. It is built from a stored user profile and carries the role the
// authorization gate checks against.
//
// # Basic Usage
//
//	sessions := identity.NewSessions(st)
//
//	// Start a session; this appends a LOGIN audit entry
//	id, err := sessions.Login(ctx, "usr_admin", clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//
// # Sessions vs Tokens
//
// Sessions live in memory and expire after DefaultIdleTimeout without
// activity. An expired session is ended with a TIMEOUT audit entry. Switching
// identity needs SYSTEM_MANAGE and is a write to Sessions, never to the
// record store's data.
//
// TokenIssuer signs the session id into a bearer token (HS256) so that HTTP
// clients can carry it between requests.
package identity
