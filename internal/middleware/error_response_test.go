package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskdeck/internal/model"
)

func TestWriteErrorResponse_FormatsBody(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, http.StatusNotFound, model.NewTaskNotFoundError())

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != model.StatusNotFound {
		t.Errorf("body.Status = %q, want %q", body.Status, model.StatusNotFound)
	}
	if len(body.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(body.Messages))
	}
}

func TestWriteErrorResponse_MultipleMessages(t *testing.T) {
	rec := httptest.NewRecorder()

	apiErr := model.NewValidationError("O email é obrigatório.", "A senha é obrigatória.")
	WriteErrorResponse(rec, http.StatusBadRequest, apiErr)

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Errorf("len(Messages) = %d, want 2", len(body.Messages))
	}
}

func TestWriteInternalServerError_DoesNotLeakDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != model.StatusInternalError {
		t.Errorf("body.Status = %q, want %q", body.Status, model.StatusInternalError)
	}
}
