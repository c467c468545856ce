// Package migrations embeds the SQL schema for the local preferences database.
package migrations

import "embed"

//go:embed sqlite/*.sql
var FS embed.FS
