// Package migrations holds the snapshot archive schema.
package migrations

import "embed"

// FS holds the numbered *.up.sql and *.down.sql files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
