package logger

import (
	"github.com/raaihank/record-sentinel/internal/masking"
	"go.uber.org/zap"
)

// Masked returns a string field whose value went through the masking rule
// of the given category.
func Masked(key string, category masking.Category, value string) zap.Field {
	return zap.String(key, masking.Mask(category, value))
}

// MaskedName returns a string field holding the initials of a two-part name.
func MaskedName(key, first, last string) zap.Field {
	return zap.String(key, masking.FullName(first, last))
}

// Secret returns a field with an API key or token masked.
func Secret(key, value string) zap.Field {
	return zap.String(key, masking.Secret(value))
}

// Password returns a field with a password masked.
func Password(key, value string) zap.Field {
	return zap.String(key, masking.Password(value))
}
