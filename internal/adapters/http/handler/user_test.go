package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/user"
)

func TestUserHandler_RegisterUser(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.February, 5, 9, 0, 0, 0, time.UTC)
	stub := &stubUserUseCase{
		registerOut: &user.User{
			ID:        "user-1",
			Email:     "hana@example.com",
			Name:      "Hana",
			Status:    user.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"email":"hana@example.com","name":"Hana"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.RegisterUser(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.registerInput.Email != "hana@example.com" {
		t.Errorf("expected email passed through, got %s", stub.registerInput.Email)
	}
	if !strings.Contains(rec.Body.String(), `"id":"user-1"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_RegisterUser_InvalidBody(t *testing.T) {
	t.Parallel()

	h := NewUserHandler(&stubUserUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.RegisterUser(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_RegisterUser_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "duplicate email", err: user.ErrEmailAlreadyExists, want: http.StatusConflict},
		{name: "invalid email", err: user.ErrInvalidEmail, want: http.StatusBadRequest},
		{name: "invalid name", err: user.ErrInvalidName, want: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewUserHandler(&stubUserUseCase{registerErr: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"email":"x@example.com","name":"X"}`))
			rec := httptest.NewRecorder()
			h.RegisterUser(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
