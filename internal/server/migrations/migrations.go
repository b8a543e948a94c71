// Package migrations embeds the goose migrations of the persistence service.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
