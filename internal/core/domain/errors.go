package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrUnknownRuleSet   = errors.New("unknown rule set")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IsConfiguration reports whether err names a declared identifier that has
// no registration (strategy or rule set). Fatal for the current document.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrUnknownStrategy) || errors.Is(err, ErrUnknownRuleSet)
}
