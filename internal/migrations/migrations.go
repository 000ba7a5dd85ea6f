// Package migrations embeds the schema and seed SQL files applied at
// startup by the migration runner.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
