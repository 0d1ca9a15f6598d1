package repository

import "QuantEase/internal/domain/models"

// IsValidModelKind returns true if kind is a supported classifier kind.
func IsValidModelKind(kind string) bool {
	switch kind {
	case models.ModelRandomForest, models.ModelLogistic:
		return true
	default:
		return false
	}
}

// DefaultModelKind returns the default classifier kind.
func DefaultModelKind() string { return models.ModelRandomForest }

// NormalizeModelKind converts a raw string to a valid kind (or default).
// This is a soft-default helper for the conversational/HTTP layers only;
// the classifier itself rejects unknown kinds.
func NormalizeModelKind(s string) string {
	if IsValidModelKind(s) {
		return s
	}
	return DefaultModelKind()
}
