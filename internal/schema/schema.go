// Package schema embeds the SQL migrations for each supported driver.
package schema

import "embed"

// Migrations holds one directory of golang-migrate files per driver.
//
//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
