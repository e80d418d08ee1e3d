package onboarding

import (
	"context"
	"path/filepath"
	"testing"
)

func testFlagStore(t *testing.T, store FlagStore) {
	t.Helper()
	ctx := context.Background()

	done, err := store.Completed(ctx, "s1:welcome")
	if err != nil || done {
		t.Fatalf("Completed() = %v, %v; want false", done, err)
	}

	for i := 0; i < 2; i++ {
		if err := store.MarkCompleted(ctx, "s1:welcome"); err != nil {
			t.Fatalf("MarkCompleted() error = %v", err)
		}
	}
	if done, _ := store.Completed(ctx, "s1:welcome"); !done {
		t.Error("Completed() = false after MarkCompleted")
	}
	if done, _ := store.Completed(ctx, "s2:welcome"); done {
		t.Error("flag leaked to another subject")
	}

	if err := store.Reset(ctx, "s1:welcome"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if done, _ := store.Completed(ctx, "s1:welcome"); done {
		t.Error("Completed() = true after Reset")
	}
}

func TestMemoryStore(t *testing.T) {
	testFlagStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	defer store.Close()

	testFlagStore(t, store)
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "onboarding.db")

	store, err := OpenSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	if err := store.MarkCompleted(ctx, Subject("s1", "welcome")); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	store.Close()

	store, err = OpenSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	if done, err := store.Completed(ctx, "s1:welcome"); err != nil || !done {
		t.Errorf("Completed() after reopen = %v, %v; want true", done, err)
	}
}

func TestSQLiteStore_Nil(t *testing.T) {
	var store *SQLiteStore
	if _, err := store.Completed(context.Background(), "x"); err != ErrStoreClosed {
		t.Errorf("Completed() on nil store error = %v", err)
	}
}

func TestTracker_MarksCompletion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tr := NewTracker(store)
	subject := Subject("s1", "welcome")

	for _, op := range []Op{OpNext, OpNext} {
		if _, err := tr.Apply(ctx, subject, 2, 0, op); err != nil {
			t.Fatalf("Apply(%s) error = %v", op, err)
		}
	}
	if done, _ := tr.Completed(ctx, subject); !done {
		t.Fatal("finishing the flow should mark it completed")
	}

	idx, err := tr.Apply(ctx, subject, 2, 0, OpReset)
	if err != nil || idx != 0 {
		t.Fatalf("Apply(reset) = %d, %v", idx, err)
	}
	if done, _ := tr.Completed(ctx, subject); done {
		t.Error("reset should clear the completion flag")
	}

	tr.Forget(subject)
	if s := tr.Stepper(subject, 2, 1); s.Current() != 1 {
		t.Errorf("stepper after Forget starts at %d, want 1", s.Current())
	}
}

func TestTracker_ForgetSession(t *testing.T) {
	tr := NewTracker(nil)
	tr.Stepper(Subject("s1", "welcome"), 3, 2)
	tr.Stepper(Subject("s1", "billing"), 3, 1)
	tr.Stepper(Subject("s10", "welcome"), 3, 2)

	if n := tr.ForgetSession("s1"); n != 2 {
		t.Errorf("ForgetSession() = %d, want 2", n)
	}
	if s := tr.Stepper(Subject("s1", "welcome"), 3, 0); s.Current() != 0 {
		t.Errorf("s1 stepper survived ForgetSession at %d", s.Current())
	}
	if s := tr.Stepper(Subject("s10", "welcome"), 3, 0); s.Current() != 2 {
		t.Errorf("s10 stepper = %d, want 2 (different session)", s.Current())
	}
}
