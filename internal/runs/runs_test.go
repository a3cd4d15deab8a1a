package runs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/RaufunNazin/Highlighter/internal/db"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func TestBeginComplete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Begin(ctx, TypeGenerate, "")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	run, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if run.Status != StatusRunning {
		t.Errorf("status = %s, want running", run.Status)
	}

	if err := repo.Complete(ctx, id, "v1.mp4", "5 segments in 12.3s"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	run, err = repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if run.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", run.Status)
	}
	if run.VideoRef != "v1.mp4" {
		t.Errorf("video_ref = %q, want v1.mp4", run.VideoRef)
	}
	if run.Detail != "5 segments in 12.3s" {
		t.Errorf("detail = %q", run.Detail)
	}
}

func TestBeginFail(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Begin(ctx, TypeConcatenate, "v1.mp4")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	if err := repo.Fail(ctx, id, "unsupported codec"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	run, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if run.Status != StatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
	if run.Error != "unsupported codec" {
		t.Errorf("error = %q, want unsupported codec", run.Error)
	}
	if run.VideoRef != "v1.mp4" {
		t.Errorf("video_ref = %q, want v1.mp4", run.VideoRef)
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Begin(ctx, TypeGenerate, ""); err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
	}

	list, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len(list) = %d, want 2", len(list))
	}
}

func TestGet_Missing(t *testing.T) {
	repo := testRepo(t)

	run, err := repo.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if run != nil {
		t.Errorf("Get() = %+v, want nil for missing run", run)
	}
}
