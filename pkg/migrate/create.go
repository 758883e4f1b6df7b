package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	versionLayout = "20060102150405"
	upMarker      = "-- +goose Up"
	downMarker    = "-- +goose Down"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9]+`)
	migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	clock           = time.Now
)

// CreateSQLMigration writes an empty <dir>/<YYYYMMDDHHMMSS>_<name>.sql with both goose sections.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, clock().UTC().Format(versionLayout)+"_"+slug+".sql")
	body := strings.Join([]string{
		upMarker, "-- +goose StatementBegin", "-- " + slug, "-- +goose StatementEnd", "",
		downMarker, "-- +goose StatementBegin", "-- rollback " + slug, "-- +goose StatementEnd", "",
	}, "\n")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

// Validate checks file naming, version uniqueness and that each file declares Up before Down.
func Validate(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no migrations found")
	}
	versions := make(map[string]string, len(names))
	for _, name := range names {
		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q, want YYYYMMDDHHMMSS_name.sql", name)
		}
		if prev, dup := versions[m[1]]; dup {
			return fmt.Errorf("version %s used by both %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		up := strings.Index(string(data), upMarker)
		down := strings.Index(string(data), downMarker)
		if up < 0 || down < 0 || down < up {
			return fmt.Errorf("migration %q must declare %q followed by %q", name, upMarker, downMarker)
		}
	}
	return nil
}
