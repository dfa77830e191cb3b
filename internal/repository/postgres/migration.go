package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// schemaPaths are tried in order so migrations work from the repo root,
// from cmd/<binary> and from package tests.
var schemaPaths = []string{
	"script/migration/schema.sql",
	"../script/migration/schema.sql",
	"../../script/migration/schema.sql",
	"../../../script/migration/schema.sql",
}

func findSchema(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	wd, _ := os.Getwd()
	return "", fmt.Errorf("schema.sql not found in %v (working dir %s)", paths, wd)
}

// RunMigrations executes schema.sql. Every statement is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	path, err := findSchema(schemaPaths)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute %s: %w", path, err)
	}
	return nil
}
