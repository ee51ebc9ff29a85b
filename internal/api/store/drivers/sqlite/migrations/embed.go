// Package migrations embeds the SQLite schema migration files so the binary
// can migrate itself at startup without shipping loose SQL alongside it.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
