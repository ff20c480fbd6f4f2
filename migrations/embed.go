// Package migrations embeds the goose SQL migration files used by the
// sqlite storage driver.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
