package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/atinyakov/NoteNest/internal/goals"
	handler "github.com/atinyakov/NoteNest/internal/server/handler/http"
)

func TestGoalHandler_Today(t *testing.T) {
	tr := &fakeTracker{daily: goals.Daily{
		Steps:   goals.NewProgress(5000, 10000),
		Workout: goals.NewProgress(45, 30),
	}}
	h := newTestRouter(newFakeController(), tr)

	w := doJSON(h, http.MethodGet, "/api/goals", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	var got goals.Daily
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != tr.daily {
		t.Errorf("got %+v; want %+v", got, tr.daily)
	}
}

func TestGoalHandler_Set(t *testing.T) {
	tr := &fakeTracker{setValue: 8000}
	h := newTestRouter(newFakeController(), tr)

	w := doJSON(h, http.MethodPut, "/api/goals/steps", `{"value":"8000"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if tr.setKind != goals.Steps || tr.setInput != "8000" {
		t.Errorf("SetGoal(%q, %q); want (steps, 8000)", tr.setKind, tr.setInput)
	}
	var got handler.GoalResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != goals.Steps || got.Goal != 8000 {
		t.Errorf("got %+v", got)
	}
}

func TestGoalHandler_SetErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{"unknown kind", "/api/goals/sleep", `{"value":"8"}`, nil, http.StatusNotFound},
		{"bad json", "/api/goals/workout", `nope`, nil, http.StatusBadRequest},
		{"invalid value", "/api/goals/workout", `{"value":"abc"}`, fmt.Errorf("%w: %q", goals.ErrInvalidGoal, "abc"), http.StatusBadRequest},
		{"storage failure", "/api/goals/workout", `{"value":"20"}`, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(newFakeController(), &fakeTracker{setErr: tt.err})

			w := doJSON(h, http.MethodPut, tt.path, tt.body)

			if w.Code != tt.status {
				t.Errorf("status = %d; want %d", w.Code, tt.status)
			}
		})
	}
}
