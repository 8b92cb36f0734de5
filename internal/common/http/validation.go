package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/blogsphere/backend/internal/common/constants"
	commonerrors "github.com/blogsphere/backend/internal/common/errors"
)

var ErrInvalidID = commonerrors.NewDomainError(
	CodeInvalidIDFormat,
	commonerrors.CategoryValidation,
	http.StatusBadRequest,
	"invalid id format",
)

func ValidateUUID(s string) error {
	if s == "" {
		return commonerrors.ErrEmptyUUID
	}
	if _, err := uuid.Parse(s); err != nil {
		return ErrInvalidID.WithCause(err)
	}
	return nil
}

// PathUUID returns the named path wildcard after checking it is a UUID.
func PathUUID(r *http.Request, name string) (string, error) {
	id := r.PathValue(name)
	if err := ValidateUUID(id); err != nil {
		return "", err
	}
	return id, nil
}

// WithUserID stores the authenticated user id for downstream handlers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, constants.UserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(constants.UserIDKey).(string)
	return userID, ok && userID != ""
}
