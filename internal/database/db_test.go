package database

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// seedBatch stores a batch of exports for the given months.
func seedBatch(t *testing.T, db *DB, batchID string, months ...int) []*Export {
	t.Helper()

	var exports []*Export
	for _, m := range months {
		exports = append(exports, &Export{
			ID:       batchID + "-" + time.Month(m).String(),
			BatchID:  batchID,
			Year:     2026,
			Month:    m,
			Workers:  []string{"SITI", "IRA"},
			Filename: "file.png",
			PNG:      []byte{0x89, 'P', 'N', 'G', byte(m)},
		})
	}

	if err := db.CreateExports(context.Background(), exports); err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return exports
}

// -----------------------------------------------------------------
// DB tests
// -----------------------------------------------------------------

func TestOpen(t *testing.T) {
	db := testDB(t)

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Migrations ran in testDB; running again should be a no-op
	count, err := db.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Migrate() count = %d, want 0 (already applied)", count)
	}
}

// -----------------------------------------------------------------
// Export tests
// -----------------------------------------------------------------

func TestCreateAndGetExport(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	exports := seedBatch(t, db, "batch-1", 3)
	want := exports[0]

	if want.SizeBytes != 5 {
		t.Errorf("SizeBytes = %d, want 5", want.SizeBytes)
	}
	if want.CreatedAt.IsZero() {
		t.Error("CreateExports() did not set CreatedAt")
	}

	got, err := db.GetExport(ctx, "batch-1", want.ID)
	if err != nil {
		t.Fatalf("GetExport() error = %v", err)
	}
	if !bytes.Equal(got.PNG, want.PNG) {
		t.Errorf("PNG = %v, want %v", got.PNG, want.PNG)
	}
	if got.Month != 3 || got.Year != 2026 {
		t.Errorf("month = %d-%d, want 2026-3", got.Year, got.Month)
	}
	if len(got.Workers) != 2 || got.Workers[1] != "IRA" {
		t.Errorf("Workers = %v", got.Workers)
	}
	if !got.CreatedAt.Equal(want.CreatedAt.Truncate(time.Microsecond)) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestGetExport_NotFound(t *testing.T) {
	db := testDB(t)
	seedBatch(t, db, "batch-1", 1)

	_, err := db.GetExport(context.Background(), "batch-2", "batch-1-January")
	if !IsNotFound(err) {
		t.Errorf("GetExport() error = %v, want not found", err)
	}
}

func TestListBatch_MonthOrder(t *testing.T) {
	db := testDB(t)
	seedBatch(t, db, "batch-1", 11, 2, 7)
	seedBatch(t, db, "batch-2", 1)

	batch, err := db.ListBatch(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("ListBatch() error = %v", err)
	}

	if len(batch.Exports) != 3 {
		t.Fatalf("len(Exports) = %d, want 3", len(batch.Exports))
	}
	for i, want := range []int{2, 7, 11} {
		if batch.Exports[i].Month != want {
			t.Errorf("Exports[%d].Month = %d, want %d", i, batch.Exports[i].Month, want)
		}
		if batch.Exports[i].PNG != nil {
			t.Errorf("ListBatch() should not load PNG data")
		}
	}

	if _, err := db.ListBatch(context.Background(), "missing"); !IsNotFound(err) {
		t.Errorf("ListBatch(missing) error = %v, want not found", err)
	}
}

func TestDeleteBatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedBatch(t, db, "batch-1", 1, 2)
	seedBatch(t, db, "batch-2", 3)

	n, err := db.DeleteBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("DeleteBatch() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteBatch() = %d, want 2", n)
	}

	if _, err := db.DeleteBatch(ctx, "batch-1"); !IsNotFound(err) {
		t.Errorf("second DeleteBatch() error = %v, want not found", err)
	}
	if _, err := db.ListBatch(ctx, "batch-2"); err != nil {
		t.Errorf("other batch affected: %v", err)
	}
}

func TestCreateExports_DuplicateRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	exports := []*Export{
		{ID: "a", BatchID: "b", Year: 2026, Month: 1, Filename: "x.png", PNG: []byte{1}},
		{ID: "a", BatchID: "b", Year: 2026, Month: 2, Filename: "y.png", PNG: []byte{2}},
	}
	if err := db.CreateExports(ctx, exports); err == nil {
		t.Fatal("CreateExports() with duplicate id expected error")
	}

	if _, err := db.ListBatch(ctx, "b"); !IsNotFound(err) {
		t.Errorf("partial batch stored: %v", err)
	}
}

func TestPruneOlderThan(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	old := []*Export{{ID: "old", BatchID: "b1", Year: 2026, Month: 1, Filename: "o.png", PNG: []byte{1},
		CreatedAt: time.Now().Add(-48 * time.Hour)}}
	if err := db.CreateExports(ctx, old); err != nil {
		t.Fatalf("CreateExports() error = %v", err)
	}
	seedBatch(t, db, "b2", 2)

	n, err := db.PruneOlderThan(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneOlderThan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PruneOlderThan() = %d, want 1", n)
	}
	if _, err := db.ListBatch(ctx, "b2"); err != nil {
		t.Errorf("recent batch pruned: %v", err)
	}
}
