// Package model defines the governance entities held by the record store.
//
// # Entities
//
//   - DocumentRecord: a governed document with classification, retention and
//     integrity metadata
//   - Policy: a named governance document
//   - RetentionSchedule: a retention period counted from a Trigger
//   - Connector: an external source that discovers records
//   - AuditLog: one entry of the append-only audit trail
//   - UserProfile: a user and their authz.Role
//   - AppSettings: the singleton organization configuration
//   - DestructionCertificate: proof of a secure disposition
//
// Entities are plain values serialized as JSON. The store persists them as
// a whole image, so there are no table mappings here.
package model
