package assets

import "embed"

// Migrations holds the capture log schema, applied in order by storage.Open.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the SQL files.
const MigrationsDir = "migrations"
