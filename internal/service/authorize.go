package service

import (
	"strings"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
)

// IsAdmin reports whether the user holds admin powers, either through the
// stored account type or through the configured allowlist of admin emails.
func IsAdmin(user *model.User, allowedEmails []string) bool {
	if user == nil {
		return false
	}
	if user.AccountType == model.AccountAdmin {
		return true
	}

	for _, email := range allowedEmails {
		if strings.EqualFold(strings.TrimSpace(email), user.Email) {
			return true
		}
	}

	return false
}
