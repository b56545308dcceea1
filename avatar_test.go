package account_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	account "github.com/goliatone/go-account"
)

func writeTestImage(t *testing.T, dir string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, "upload.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))

	return path
}

func TestAvatarStoreProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("resizes to 250x250 and removes the temp file", func(t *testing.T) {
		tempDir := t.TempDir()
		storeDir := t.TempDir()

		tempPath := writeTestImage(t, tempDir, 600, 400)
		store := account.NewAvatarStore(storeDir)

		avatarURL, err := store.Process(ctx, tempPath, "abc_selfie.png")
		require.NoError(t, err)
		assert.Equal(t, "public/avatars/abc_selfie.png", avatarURL)

		_, err = os.Stat(tempPath)
		assert.True(t, os.IsNotExist(err), "temp upload should be removed")

		stored, err := imaging.Open(filepath.Join(storeDir, "abc_selfie.png"))
		require.NoError(t, err)
		assert.Equal(t, 250, stored.Bounds().Dx())
		assert.Equal(t, 250, stored.Bounds().Dy())
	})

	t.Run("removes the temp file when the upload is not an image", func(t *testing.T) {
		tempDir := t.TempDir()
		storeDir := t.TempDir()

		tempPath := filepath.Join(tempDir, "upload.png")
		require.NoError(t, os.WriteFile(tempPath, []byte("not an image"), 0o644))

		store := account.NewAvatarStore(storeDir)

		_, err := store.Process(ctx, tempPath, "abc_selfie.png")
		require.Error(t, err)

		_, err = os.Stat(tempPath)
		assert.True(t, os.IsNotExist(err), "temp upload should be removed on failure")

		_, err = os.Stat(filepath.Join(storeDir, "abc_selfie.png"))
		assert.True(t, os.IsNotExist(err), "no partial avatar should remain")
	})

	t.Run("creates the store directory on demand", func(t *testing.T) {
		tempDir := t.TempDir()
		storeDir := filepath.Join(t.TempDir(), "nested", "avatars")

		tempPath := writeTestImage(t, tempDir, 100, 100)
		store := account.NewAvatarStore(storeDir)

		_, err := store.Process(ctx, tempPath, "abc_selfie.png")
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(storeDir, "abc_selfie.png"))
		assert.NoError(t, err)
	})
}
