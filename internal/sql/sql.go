// Package sql embeds the claims schema migrations.
package sql

import "embed"

// Migrations holds the SQL migration files, applied in filename order.
//
//go:embed migrations
var Migrations embed.FS
