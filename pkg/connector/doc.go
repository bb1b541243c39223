// Package connector drives the synchronization state machine of external
// sources.
//
//	Paused <-> Active <-> Syncing -> Active
//	                      Syncing -> Error -> Syncing
//
// A sync marks the connector Syncing in one store mutation, runs discovery
// without holding the store lock, then commits the discovered records, the
// new counters and the SYNC_CONNECTOR entry in a second mutation. Discovery
// is bounded: a connector never gets more than DiscoveryThreshold records
// attributed to it by sync.
package connector
