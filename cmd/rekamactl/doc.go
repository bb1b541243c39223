// Command rekamactl runs the Rekama records governance server and offers
// administration commands (migrations, export and import, factory reset,
// connector sync and policy loading) against the configured storage.
package main
