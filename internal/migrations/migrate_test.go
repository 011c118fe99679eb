package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Simplici0/deliverycost/internal/db"
)

func TestUpIsIdempotent(t *testing.T) {
	ctx := context.Background()

	database, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 3; i++ {
		if err := Up(ctx, database, db.Dialect(db.DriverSQLite)); err != nil {
			t.Fatalf("run migrations (iteration=%d): %v", i, err)
		}
	}

	version, err := Version(ctx, database, db.Dialect(db.DriverSQLite))
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != 1 {
		t.Fatalf("version = %d, want 1", version)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM quotes`).Scan(&count); err != nil {
		t.Fatalf("query quotes table: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty quotes table, got %d rows", count)
	}
}
