// Package governance is the entry point for every state change made on
// behalf of a user. Each operation checks the caller's role with the
// authorization gate, runs one store mutation, and appends the matching
// audit entry inside that same mutation so that the change and its trail
// are committed together.
package governance
