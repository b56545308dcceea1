package account

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// PlaceholderAvatarURL derives the default avatar for an email address. The
// gravatar hash wants the address trimmed and lowercased; account identity
// itself stays exact-string, only the image lookup normalizes.
func PlaceholderAvatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:]))
}
