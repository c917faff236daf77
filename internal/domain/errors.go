package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTitleNotFound signals a query title that is not in the catalog.
	ErrTitleNotFound = errors.New("title not found")
	// ErrInvalidArtifact signals a malformed or inconsistent catalog/matrix artifact.
	ErrInvalidArtifact = errors.New("invalid artifact")
	// ErrPosterNotFound signals that the provider has no poster for a title.
	ErrPosterNotFound = errors.New("poster not found")
	// ErrPosterProviderError signals a poster provider failure.
	ErrPosterProviderError = errors.New("poster provider error")
)

// TitleNotFoundError wraps ErrTitleNotFound with the offending title.
type TitleNotFoundError struct {
	Title string
}

func (e *TitleNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrTitleNotFound.Error(), e.Title)
}

func (e *TitleNotFoundError) Unwrap() error { return ErrTitleNotFound }

// NewTitleNotFound creates a title-not-found error.
func NewTitleNotFound(title string) error {
	return &TitleNotFoundError{Title: title}
}
