package migrations

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	accounts "github.com/goliatone/go-accounts"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const rootPath = "data/sql/migrations"

// SchemaTables must be created by the up migrations of every dialect.
var SchemaTables = []string{"accounts", "account_users"}

var createTablePattern = regexp.MustCompile(`(?i)create\s+table\s+(?:if\s+not\s+exists\s+)?"?([a-z_][a-z0-9_]*)"?`)

// DialectFS returns the migration directory for dialect after validating
// it. The embedded accounts migrations are used unless source is given.
func DialectFS(dialect string, source ...fs.FS) (fs.FS, error) {
	root := accounts.GetMigrationsFS()
	if len(source) > 0 && source[0] != nil {
		root = source[0]
	}

	dir := rootPath
	switch strings.TrimSpace(strings.ToLower(dialect)) {
	case DialectPostgres:
	case DialectSQLite:
		dir = rootPath + "/sqlite"
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}

	sub, err := fs.Sub(root, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", dir, err)
	}
	if err := Validate(sub); err != nil {
		return nil, fmt.Errorf("migrations: %s: %w", dialect, err)
	}
	return sub, nil
}

// Validate checks that every migration in fsys comes as an up/down pair and
// that the up migrations create the accounts schema tables.
func Validate(fsys fs.FS) error {
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return err
	}
	downs, err := fs.Glob(fsys, "*.down.sql")
	if err != nil {
		return err
	}
	if len(ups) == 0 {
		return fmt.Errorf("no *.up.sql files")
	}

	pending := make(map[string]bool, len(downs))
	for _, name := range downs {
		pending[strings.TrimSuffix(name, ".down.sql")] = true
	}

	created := map[string]bool{}
	for _, name := range ups {
		version := strings.TrimSuffix(name, ".up.sql")
		if !pending[version] {
			return fmt.Errorf("%s has no down migration", name)
		}
		delete(pending, version)

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		for _, match := range createTablePattern.FindAllStringSubmatch(string(content), -1) {
			created[strings.ToLower(match[1])] = true
		}
	}
	for version := range pending {
		return fmt.Errorf("%s.down.sql has no up migration", version)
	}

	for _, table := range SchemaTables {
		if !created[table] {
			return fmt.Errorf("no up migration creates table %q", table)
		}
	}
	return nil
}

// Register validates the migrations for dialect and hands them to register.
func Register(dialect string, register func(fs.FS)) error {
	if register == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	fsys, err := DialectFS(dialect)
	if err != nil {
		return err
	}
	register(fsys)
	return nil
}
