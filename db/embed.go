// Package db embeds the SQL migrations for the snapshot and audit tables.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
