// Package migrations embeds the SQL schema applied to every collection
// namespace. Files follow goose's NNNNN_name.sql convention.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
