package pkg

import (
	"strings"

	"github.com/triquilabs/triqui-backend/internal/apperror"
)

// NormalizeIdentity validates and case-normalizes a caller-supplied player
// identity at the transport boundary, so the core never has to do ad-hoc
// case-insensitive matching.
func NormalizeIdentity(raw string) (string, error) {
	identity := strings.ToLower(strings.TrimSpace(raw))
	if identity == "" {
		return "", apperror.ErrEmptyIdentity
	}

	return identity, nil
}
