// Package durability persists whole-store snapshots.
//
// A Backend stores one opaque byte image. The store writes a complete image
// after every mutation and reads it back on open. Backends know nothing
// about the schema inside the image.
//
// # Backends
//
//   - Memory: process-local, for tests and ephemeral deployments
//   - File: a single file replaced atomically on every save
//   - Sealed: wraps any Backend and encrypts the image with a seal.Cipher
//   - gorm.Backend (subpackage): a single row in PostgreSQL or SQLite
package durability
