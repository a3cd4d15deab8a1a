package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/RaufunNazin/Highlighter/internal/db"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database.Conn())
}

func TestSetCredentials_RoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user := &Profile{ID: 7, Username: "raufun", Email: "raufun@example.com", Role: 2}
	if err := store.SetCredentials(ctx, "tok-123", user); err != nil {
		t.Fatalf("SetCredentials() error = %v", err)
	}

	if got := store.Token(); got != "tok-123" {
		t.Errorf("Token() = %q, want tok-123", got)
	}

	gotUser, err := store.User(ctx)
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if gotUser == nil || gotUser.Username != "raufun" || gotUser.ID != 7 {
		t.Errorf("User() = %+v, want stored profile", gotUser)
	}
}

func TestSetCredentials_LastWriteWins(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	store.SetCredentials(ctx, "first", &Profile{Username: "a"})
	store.SetCredentials(ctx, "second", &Profile{Username: "b"})

	if got := store.Token(); got != "second" {
		t.Errorf("Token() = %q, want second", got)
	}
	user, _ := store.User(ctx)
	if user.Username != "b" {
		t.Errorf("Username = %q, want b", user.Username)
	}
}

func TestClear_RemovesTokenAndUser(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	store.SetCredentials(ctx, "tok", &Profile{Username: "x"})
	store.SetVideoRef(ctx, "v1.mp4")

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if got := store.Token(); got != "" {
		t.Errorf("Token() after Clear = %q, want empty", got)
	}
	user, err := store.User(ctx)
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if user != nil {
		t.Errorf("User() after Clear = %+v, want nil", user)
	}

	// Video refs survive logout.
	ref, _ := store.VideoRef(ctx)
	if ref != "v1.mp4" {
		t.Errorf("VideoRef() after Clear = %q, want v1.mp4", ref)
	}
}

func TestVideoRefs_AbsentByDefault(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	ref, err := store.VideoRef(ctx)
	if err != nil {
		t.Fatalf("VideoRef() error = %v", err)
	}
	if ref != "" {
		t.Errorf("VideoRef() = %q, want empty", ref)
	}

	final, err := store.FinalVideoRef(ctx)
	if err != nil {
		t.Fatalf("FinalVideoRef() error = %v", err)
	}
	if final != "" {
		t.Errorf("FinalVideoRef() = %q, want empty", final)
	}
}

func TestFinalVideoRef_Overwrites(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	store.SetFinalVideoRef(ctx, "final_1.mp4")
	store.SetFinalVideoRef(ctx, "final_2.mp4")

	got, err := store.FinalVideoRef(ctx)
	if err != nil {
		t.Fatalf("FinalVideoRef() error = %v", err)
	}
	if got != "final_2.mp4" {
		t.Errorf("FinalVideoRef() = %q, want final_2.mp4", got)
	}
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	db1, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	store1 := NewStore(db1.Conn())
	store1.SetCredentials(ctx, "persisted", nil)
	store1.SetVideoRef(ctx, "v9.mp4")
	db1.Close()

	db2, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("reopen db.New() error = %v", err)
	}
	defer db2.Close()
	store2 := NewStore(db2.Conn())

	if got := store2.Token(); got != "persisted" {
		t.Errorf("Token() after reopen = %q, want persisted", got)
	}
	ref, _ := store2.VideoRef(ctx)
	if ref != "v9.mp4" {
		t.Errorf("VideoRef() after reopen = %q, want v9.mp4", ref)
	}
}
