package shared

import (
	"errors"
	"fmt"

	"github.com/meridian-erp/meridian/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found. It aliases the httpx
	// sentinel so handlers can pass it straight to RespondError.
	ErrNotFound = httpx.ErrNotFound
	// ErrValidation indicates a semantic validation failure.
	ErrValidation = httpx.ErrValidation
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrScopeMissing occurs when a service call lacks user/company context.
	ErrScopeMissing = fmt.Errorf("request scope missing: %w", httpx.ErrUnauthorized)
)
