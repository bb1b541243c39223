// Package gorm stores snapshots in a relational database through GORM.
//
// The image lives in one row of the rekama_snapshots table, keyed by name so
// several stores can share a database. The table is created by the
// db/migrations scripts for PostgreSQL; AutoMigrate covers SQLite and tests.
package gorm
