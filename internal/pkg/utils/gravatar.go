package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL returns the Gravatar avatar URL for an email address. Size is
// in pixels; values <= 0 fall back to 200. "d=mp" selects the neutral
// mystery-person placeholder for addresses without a Gravatar account.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
