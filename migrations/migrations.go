// Package migrations embeds the schema so binaries and serverless builds carry it.
package migrations

import "embed"

const PostgresDir = "postgres"

//go:embed postgres/*.sql
var FS embed.FS
