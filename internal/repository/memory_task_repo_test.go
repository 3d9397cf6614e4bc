package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/taskdeck/internal/model"
)

func TestMemoryTaskRepo_Create_AssignsIDAndForcesPending(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	// 呼び出し側が指定したIDとステータスは無視される
	created, err := repo.Create(ctx, model.Task{
		ID:     999,
		Title:  "Buy milk",
		Status: model.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID != 1 {
		t.Errorf("ID = %d, want 1", created.ID)
	}
	if created.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", created.Status, model.StatusPending)
	}
	if created.Description != "" {
		t.Errorf("Description = %q, want empty", created.Description)
	}
}

func TestMemoryTaskRepo_Create_IDsAreUniqueAndIncreasing(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	seen := map[int]bool{}
	prev := 0
	for i := 0; i < 5; i++ {
		created, err := repo.Create(ctx, model.Task{Title: "task"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID <= 0 {
			t.Errorf("ID = %d, want > 0", created.ID)
		}
		if seen[created.ID] {
			t.Errorf("duplicate ID assigned: %d", created.ID)
		}
		if created.ID <= prev {
			t.Errorf("ID = %d is not increasing (prev %d)", created.ID, prev)
		}
		seen[created.ID] = true
		prev = created.ID
	}
}

func TestMemoryTaskRepo_Create_IDsNotReusedAfterDelete(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	first, _ := repo.Create(ctx, model.Task{Title: "a"})
	second, _ := repo.Create(ctx, model.Task{Title: "b"})

	if err := repo.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	third, err := repo.Create(ctx, model.Task{Title: "c"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if third.ID == first.ID || third.ID == second.ID {
		t.Errorf("ID %d was reused within the session", third.ID)
	}
}

func TestMemoryTaskRepo_Create_BlankTitle_RejectedWithoutMutation(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := repo.Create(ctx, model.Task{Title: title})

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Create(%q): expected APIError, got %v", title, err)
		}
		if apiErr.Code != model.ErrCodeValidation {
			t.Errorf("Create(%q): Code = %q, want %q", title, apiErr.Code, model.ErrCodeValidation)
		}
	}

	all, _ := repo.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("store size = %d after rejected creates, want 0", len(all))
	}
}

func TestMemoryTaskRepo_RoundTrip(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{Title: "T", Description: "D"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil for existing task")
	}
	if got.Title != "T" || got.Description != "D" || got.Status != model.StatusPending {
		t.Errorf("got %+v, want {Title:T Description:D Status:Pending}", got)
	}
}

func TestMemoryTaskRepo_GetByID_Absent_ReturnsNil(t *testing.T) {
	repo := NewMemoryTaskRepo()

	got, err := repo.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetByID(42) = %+v, want nil", got)
	}
}

func TestMemoryTaskRepo_Update_UnknownID_NotFoundWithoutMutation(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "keep"})

	_, err := repo.Update(ctx, model.Task{ID: 999, Title: "new title"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTaskNotFound {
		t.Fatalf("expected task-not-found error, got %v", err)
	}

	all, _ := repo.GetAll(ctx)
	if len(all) != 1 || all[0].ID != created.ID || all[0].Title != "keep" {
		t.Errorf("store mutated by failed update: %+v", all)
	}
}

func TestMemoryTaskRepo_Update_BlankTitle_Rejected(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "original"})

	_, err := repo.Update(ctx, model.Task{ID: created.ID, Title: "  "})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMemoryTaskRepo_Update_ReplacesFields(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "old", Description: "old desc"})

	updated, err := repo.Update(ctx, model.Task{
		ID:          created.ID,
		Title:       "new",
		Description: "new desc",
		Status:      model.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, updated.ID)
	if got.Title != "new" || got.Description != "new desc" || got.Status != model.StatusInProgress {
		t.Errorf("got %+v after update", got)
	}
}

func TestMemoryTaskRepo_UpdateStatus_MutatesOnlyStatus(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "Buy milk", Description: "2 liters"})

	if err := repo.UpdateStatus(ctx, created.ID, model.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, created.ID)
	if got.Status != model.StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusCompleted)
	}
	if got.Title != "Buy milk" || got.Description != "2 liters" {
		t.Errorf("title/description changed by UpdateStatus: %+v", got)
	}
}

func TestMemoryTaskRepo_UpdateStatus_UnknownID_IsNoOp(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "keep"})

	if err := repo.UpdateStatus(ctx, 999, model.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus on unknown ID returned error: %v", err)
	}

	all, _ := repo.GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("store size = %d, want 1", len(all))
	}
	if all[0].Status != model.StatusPending {
		t.Errorf("existing record mutated: %+v", all[0])
	}
	_ = created
}

func TestMemoryTaskRepo_Delete_ThenGetByID_ReturnsNil(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "to delete"})

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, created.ID)
	if got != nil {
		t.Errorf("GetByID after delete = %+v, want nil", got)
	}

	// 既に存在しないIDの削除もエラーにならない
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Errorf("Delete on absent ID returned error: %v", err)
	}
}

func TestMemoryTaskRepo_GetAll_ReturnsCopies(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, model.Task{Title: "original"})

	all, _ := repo.GetAll(ctx)
	all[0].Title = "mutated by caller"

	got, _ := repo.GetByID(ctx, created.ID)
	if got.Title != "original" {
		t.Errorf("store record mutated through GetAll result: %q", got.Title)
	}
}
