package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/dealbrief/internal/models"
)

func sizeOf(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return info.Size()
}

func TestDatabaseUsageBytes_IncludesWAL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "deals.db")
	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	memo := strings.Repeat("Series A fintech memo. ", 200)
	for i := 0; i < 50; i++ {
		deal := &models.Deal{ID: fmt.Sprintf("deal-%d", i), RawText: memo}
		if err := store.CreateDeal(ctx, deal, fmt.Sprintf("hash-%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	wal := sizeOf(t, dbPath+"-wal")
	if wal == 0 {
		t.Fatal("expected an open WAL after writes")
	}
	want := sizeOf(t, dbPath) + wal + sizeOf(t, dbPath+"-shm")

	got, err := DatabaseUsageBytes(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("DatabaseUsageBytes = %d, want %d (db+wal+shm)", got, want)
	}
	if got <= sizeOf(t, dbPath) {
		t.Errorf("DatabaseUsageBytes = %d, should exceed the main file alone", got)
	}
}

func TestDatabaseUsageBytes_MissingOrMemory(t *testing.T) {
	for _, path := range []string{"", ":memory:", filepath.Join(t.TempDir(), "absent.db")} {
		got, err := DatabaseUsageBytes(path)
		if err != nil || got != 0 {
			t.Errorf("DatabaseUsageBytes(%q) = %d, %v; want 0, nil", path, got, err)
		}
	}
}

func TestUsageBytes_DatabaseAndIndex(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "deals.db")
	if err := os.WriteFile(dbPath, []byte("db"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dbPath+"-wal", []byte("wal"), 0644); err != nil {
		t.Fatal(err)
	}
	indexPath := filepath.Join(dir, "bleve")
	if err := os.MkdirAll(filepath.Join(indexPath, "store"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(indexPath, "index_meta.json"), []byte("meta"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(indexPath, "store", "root.bolt"), []byte("segment"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		db, index string
		want      int64
	}{
		{"database and index", dbPath, indexPath, 5 + 11},
		{"memory index", dbPath, "", 5},
		{"missing index", dbPath, filepath.Join(dir, "absent"), 5},
		{"index only", "", indexPath, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UsageBytes(tt.db, tt.index)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("UsageBytes = %d, want %d", got, tt.want)
			}
		})
	}
}
