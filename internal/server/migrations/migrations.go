// Package migrations embeds the PostgreSQL schema for the sync server.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
