package service

import (
	"net/http"

	commonerrors "github.com/blogsphere/backend/internal/common/errors"
)

var (
	ErrBlogNotFound = commonerrors.NewDomainError(
		"BLOG_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"blog not found",
	)

	ErrAuthorNotFound = commonerrors.NewDomainError(
		"AUTHOR_NOT_FOUND",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"author not found",
	)
)

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
