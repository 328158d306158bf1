package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/user"
)

// UserHandler はユーザー登録の HTTP アダプタです。
type UserHandler struct {
	svc user.UseCase
}

// NewUserHandler は UserHandler を生成します。
func NewUserHandler(svc user.UseCase) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register はユーザー系のルートを登録します。
func (h *UserHandler) Register(r chi.Router) {
	r.Post("/users", h.RegisterUser)
}

type registerUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterUser は新しいユーザーを登録します。
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	created, err := h.svc.RegisterUser(r.Context(), user.RegisterUserInput{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userPayload{
		ID:        created.ID,
		Email:     created.Email,
		Name:      created.Name,
		Status:    string(created.Status),
		CreatedAt: created.CreatedAt,
		UpdatedAt: created.UpdatedAt,
	})
}
