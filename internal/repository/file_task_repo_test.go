package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hitoshi/taskdeck/internal/model"
)

func newTestFileRepo(t *testing.T) (*FileTaskRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	repo, err := NewFileTaskRepo(path)
	if err != nil {
		t.Fatalf("NewFileTaskRepo failed: %v", err)
	}
	return repo, path
}

func TestFileTaskRepo_MissingFile_StartsEmpty(t *testing.T) {
	repo, _ := newTestFileRepo(t)

	all, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("store size = %d, want 0", len(all))
	}
}

func TestFileTaskRepo_Create_WritesFullJSONArray(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("tasks file not written: %v", err)
	}

	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		t.Fatalf("tasks file is not a JSON array: %v\nraw: %s", err, data)
	}
	if len(tasks) != 1 {
		t.Fatalf("file contains %d tasks, want 1", len(tasks))
	}
	if tasks[0].ID != created.ID || tasks[0].Title != "Buy milk" || tasks[0].Status != model.StatusPending {
		t.Errorf("persisted task = %+v", tasks[0])
	}
}

func TestFileTaskRepo_ReloadPreservesTasksAndIDCounter(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	first, _ := repo.Create(ctx, model.Task{Title: "first"})
	second, _ := repo.Create(ctx, model.Task{Title: "second"})
	if err := repo.UpdateStatus(ctx, first.ID, model.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	// 同じファイルから別インスタンスを構築する
	reloaded, err := NewFileTaskRepo(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	got, _ := reloaded.GetByID(ctx, first.ID)
	if got == nil || got.Status != model.StatusCompleted {
		t.Errorf("reloaded task = %+v, want Completed status", got)
	}

	// ID払い出しは既存の最大ID+1から継続する
	third, err := reloaded.Create(ctx, model.Task{Title: "third"})
	if err != nil {
		t.Fatalf("Create after reload failed: %v", err)
	}
	if third.ID != second.ID+1 {
		t.Errorf("ID after reload = %d, want %d", third.ID, second.ID+1)
	}
}

func TestFileTaskRepo_Delete_RewritesFile(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "to delete"})
	keep, _ := repo.Create(ctx, model.Task{Title: "keep"})

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		t.Fatalf("failed to parse tasks file: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Errorf("persisted tasks after delete = %+v", tasks)
	}
}

func TestFileTaskRepo_BlankTitle_RejectedWithoutWrite(t *testing.T) {
	repo, path := newTestFileRepo(t)

	_, err := repo.Create(context.Background(), model.Task{Title: "   "})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("tasks file was written despite rejected create")
	}
}

func TestFileTaskRepo_CorruptFile_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileTaskRepo(path); err == nil {
		t.Error("expected error for corrupt tasks file")
	}
}

func TestFileTaskRepo_UpdateStatus_UnknownID_DoesNotTouchFile(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, model.Task{Title: "keep"}); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)

	if err := repo.UpdateStatus(ctx, 999, model.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus on unknown ID returned error: %v", err)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("tasks file rewritten by no-op UpdateStatus")
	}
}
