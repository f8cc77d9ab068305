package auth

import "embed"

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS exposes the embedded SQL migrations so callers can
// mount them on their own persistence client.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
