// Package migrations holds the SQL schema migrations for the local content
// store, embedded for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
