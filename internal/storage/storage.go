package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	commonerrors "github.com/blogsphere/backend/internal/common/errors"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

// PhotoStore keeps blog photos. Save returns the public URL of the stored photo.
type PhotoStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	// Delete is a no-op for a missing photo.
	Delete(ctx context.Context, name string) error
}

var (
	ErrInvalidDataURL = commonerrors.NewDomainError(
		"INVALID_PHOTO",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"photo must be a base64 png or jpeg data url",
	)

	ErrPhotoTooLarge = commonerrors.NewDomainError(
		"PHOTO_TOO_LARGE",
		commonerrors.CategoryValidation,
		http.StatusRequestEntityTooLarge,
		"photo is too large",
	)

	ErrInvalidName = errors.New("invalid photo name")
)

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpg|jpeg);base64,`)

// DecodeDataURL strips the data url prefix and decodes the base64 payload.
// maxBytes <= 0 disables the size check.
func DecodeDataURL(dataURL string, maxBytes int64) ([]byte, error) {
	loc := dataURLPrefix.FindStringIndex(dataURL)
	if loc == nil {
		return nil, ErrInvalidDataURL
	}
	payload := dataURL[loc[1]:]

	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, ErrPhotoTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidDataURL.WithCause(err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURL
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrPhotoTooLarge
	}
	return data, nil
}

// NewPhotoName returns "<ulid>-<author>.png". The ULID prefix keeps names
// unique and sorted by upload time.
func NewPhotoName(now time.Time, author string) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate photo id: %w", err)
	}
	return id.String() + "-" + author + ".png", nil
}

// NameFromURL returns the last path segment of a stored photo URL.
func NameFromURL(photoURL string) string {
	if i := strings.LastIndex(photoURL, "/"); i >= 0 {
		return photoURL[i+1:]
	}
	return photoURL
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func observeSave(driver string, size int, err error) {
	if err != nil {
		metrics.PhotoStorageErrors.WithLabelValues(driver, "save").Inc()
		return
	}
	metrics.PhotosStored.WithLabelValues(driver).Inc()
	metrics.PhotoBytesStored.WithLabelValues(driver).Add(float64(size))
}

func observeDelete(driver string, err error) {
	if err != nil {
		metrics.PhotoStorageErrors.WithLabelValues(driver, "delete").Inc()
	}
}
