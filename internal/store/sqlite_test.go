package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"go-adala-mirror/internal/model"
	"go-adala-mirror/internal/store"
)

func TestSQLite_MigrateUpsertAndReset(t *testing.T) {
	dir := t.TempDir()
	s, err := store.OpenSQLite(filepath.Join(dir, "test.db"))
	if err != nil { t.Fatalf("open sqlite: %v", err) }
	defer s.Close()

	ctx := context.Background()
	// 先失败后成功：同一路径的记录应被覆盖
	fail := model.Record{Path: "laws/a.pdf", URL: "u1", FolderID: "12", Status: model.StatusFailed, Error: "boom"}
	if err := s.UpsertRecord(ctx, fail); err != nil { t.Fatalf("upsert fail: %v", err) }
	ok := model.Record{Path: "laws/a.pdf", URL: "u1", FolderID: "12", Status: model.StatusOK, Size: 1234}
	if err := s.UpsertRecord(ctx, ok); err != nil { t.Fatalf("upsert ok: %v", err) }
	if err := s.UpsertRecord(ctx, model.Record{Path: "laws/b.pdf", URL: "u2", FolderID: "12", Status: model.StatusFailed, Error: "x"}); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	fails, err := s.ListFailures(ctx)
	if err != nil { t.Fatalf("list failures: %v", err) }
	if len(fails) != 1 || fails[0].Path != "laws/b.pdf" { t.Fatalf("failures: %+v", fails) }

	nok, nfail, err := s.Counts(ctx)
	if err != nil { t.Fatalf("counts: %v", err) }
	if nok != 1 || nfail != 1 { t.Fatalf("counts = %d/%d", nok, nfail) }

	if err := s.Reset(ctx); err != nil { t.Fatalf("reset: %v", err) }
	nok, nfail, err = s.Counts(ctx)
	if err != nil { t.Fatalf("counts after reset: %v", err) }
	if nok != 0 || nfail != 0 { t.Fatalf("reset incomplete: %d/%d", nok, nfail) }
}

func TestSQLite_RequiresPath(t *testing.T) {
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil { t.Fatalf("open sqlite: %v", err) }
	defer s.Close()
	if err := s.UpsertRecord(context.Background(), model.Record{Status: model.StatusOK}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
