package utils

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyError reports whether err is a unique constraint
// violation. Checked where a unique index is the enforcement mechanism
// (daily check-ins, weekly attendance, badges) so races map to the
// conflict path instead of a generic failure.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL error 1062 for drivers without translated errors.
	return strings.Contains(err.Error(), "Duplicate entry")
}
