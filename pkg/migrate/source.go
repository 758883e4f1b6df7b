package migrate

import (
	"embed"
	"io/fs"
	"os"
)

// DefaultDir is where new migrations are authored, relative to the repository root.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source returns the migrations compiled into the binary when dir is empty, otherwise dir on disk.
func Source(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return fs.Sub(embedded, "migrations")
}
