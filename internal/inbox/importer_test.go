package inbox

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/models"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeSubmitter) CreateDeal(ctx context.Context, rawText string) (*models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, rawText)
	return &models.Deal{ID: "d1", RawText: rawText, Status: models.StatusPending}, nil
}

func (f *fakeSubmitter) submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "memo.txt"), "  Acme Robotics raises $5M  \n")
	writeFile(t, filepath.Join(dir, "deck.pptx"), "binary")
	writeFile(t, filepath.Join(dir, "blank.md"), " \n\n ")
	writeFile(t, filepath.Join(dir, "long.txt"), strings.Repeat("é", MaxTextLength+1))

	tests := []struct {
		file      string
		want      Outcome
		submitted bool
	}{
		{"memo.txt", OutcomeCreated, true},
		{"deck.pptx", OutcomeUnsupported, false},
		{"blank.md", OutcomeEmpty, false},
		{"long.txt", OutcomeTooLong, false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			sub := &fakeSubmitter{}
			got, err := NewImporter(sub, nil).Import(context.Background(), filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if got != tt.want {
				t.Errorf("outcome = %q, want %q", got, tt.want)
			}
			if n := len(sub.submitted()); (n == 1) != tt.submitted {
				t.Errorf("submitted %d texts", n)
			}
		})
	}
}

func TestImport_submitsCleanText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.txt")
	writeFile(t, path, "  Acme Robotics \r\n\r\n\r\nSeed round\n")
	sub := &fakeSubmitter{}
	if _, err := NewImporter(sub, nil).Import(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	got := sub.submitted()
	if len(got) != 1 || got[0] != "Acme Robotics\n\nSeed round" {
		t.Errorf("submitted %q", got)
	}
}

func TestImport_rejectedIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.txt")
	writeFile(t, path, "Acme")
	sub := &fakeSubmitter{err: &client.APIError{Status: http.StatusBadRequest, Message: "Deal with this input hash already exists."}}

	got, err := NewImporter(sub, nil).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got != OutcomeRejected {
		t.Errorf("outcome = %q, want %q", got, OutcomeRejected)
	}
}

func TestImport_errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.txt")
	writeFile(t, path, "Acme")

	serverErr := &client.APIError{Status: http.StatusInternalServerError, Message: "Internal server error."}
	_, err := NewImporter(&fakeSubmitter{err: serverErr}, nil).Import(context.Background(), path)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("err = %v, want wrapped 500 APIError", err)
	}

	_, err = NewImporter(&fakeSubmitter{err: client.ErrTransport}, nil).Import(context.Background(), path)
	if !errors.Is(err, client.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}

	if _, err := NewImporter(&fakeSubmitter{}, nil).Import(context.Background(), filepath.Join(dir, "gone.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRun_noDirectories(t *testing.T) {
	if err := NewImporter(&fakeSubmitter{}, nil).Run(context.Background(), config.InboxConfig{}); err == nil {
		t.Error("expected error without directories")
	}
}

func TestRun_syncExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "existing.txt"), "Existing deal memo")
	writeFile(t, filepath.Join(dir, "skip.xyz"), "not a deal")

	sub := &fakeSubmitter{}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- NewImporter(sub, nil).Run(ctx, config.InboxConfig{
			Directories:  []string{dir},
			Extensions:   []string{".txt", ".md"},
			SyncExisting: true,
		})
	}()

	waitFor(t, func() bool { return len(sub.submitted()) == 1 })
	writeFile(t, filepath.Join(dir, "nested", "new.md"), "New deal memo")
	waitFor(t, func() bool { return len(sub.submitted()) == 2 })

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := sub.submitted()
	if got[0] != "Existing deal memo" || got[1] != "New deal memo" {
		t.Errorf("submitted %q", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
