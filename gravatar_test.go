package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	account "github.com/goliatone/go-account"
)

func TestPlaceholderAvatarURL(t *testing.T) {
	t.Run("derives a stable gravatar url", func(t *testing.T) {
		// md5("ada@example.com")
		want := "https://www.gravatar.com/avatar/3e3417d7ef77d5932a6734b916515ed5?d=identicon"
		assert.Equal(t, want, account.PlaceholderAvatarURL("ada@example.com"))
	})

	t.Run("normalizes case and whitespace for the image hash", func(t *testing.T) {
		base := account.PlaceholderAvatarURL("ada@example.com")
		assert.Equal(t, base, account.PlaceholderAvatarURL("  ADA@Example.COM  "))
	})

	t.Run("different emails get different avatars", func(t *testing.T) {
		assert.NotEqual(t,
			account.PlaceholderAvatarURL("ada@example.com"),
			account.PlaceholderAvatarURL("grace@example.com"),
		)
	})
}
