package handler

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/user"
)

func toHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, attendance.ErrInvalidUser),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, attendance.ErrInvalidMonth),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrAlreadyPunchedIn),
		errors.Is(err, attendance.ErrAlreadyPunchedOut),
		errors.Is(err, attendance.ErrNoPunchInFound),
		errors.Is(err, user.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, attendance.ErrPersistenceFailure):
		return http.StatusServiceUnavailable
	default:
		// attendance.ErrPunchInMissing はデータ整合性の問題なのでここに落ちます。
		return http.StatusInternalServerError
	}
}
