package database

import "embed"

// EmbedMigrations contains the goose migration files.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
