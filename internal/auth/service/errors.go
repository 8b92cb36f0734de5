package service

import (
	"net/http"

	commonerrors "github.com/blogsphere/backend/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"password not matched",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"Email not found",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"Email already registered",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"username is already registered",
	)

	ErrInvalidRefreshToken = commonerrors.NewDomainError(
		"INVALID_REFRESH_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"unauthorized",
	)

	ErrServiceUnavailable = commonerrors.NewDomainError(
		"SERVICE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)
)
