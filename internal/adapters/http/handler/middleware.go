package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/user"
)

// UserEmailHeader は操作主体のユーザーを示すヘッダです。
// 認証そのものはこのサービスの外側で行われる前提です。
const UserEmailHeader = "X-User-Email"

type emailContextKey struct{}

// EmailFromContext はアイデンティティミドルウェアが解決したメールアドレスを返します。
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailContextKey{}).(string)
	return email, ok
}

// Identity は X-User-Email をユーザーサービスで解決し、コンテキストに載せる
// ミドルウェアを返します。ヘッダ欠落は 401、未登録ユーザーは 404 です。
func Identity(users user.UseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(UserEmailHeader))
			if raw == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing " + UserEmailHeader + " header"})
				return
			}

			resolved, err := users.GetUserByEmail(r.Context(), raw)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), emailContextKey{}, resolved.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
