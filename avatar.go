package account

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/goliatone/go-errors"
)

const (
	avatarSize      = 250
	avatarURLPrefix = "public/avatars"
)

// AvatarStore resizes uploaded images to a fixed square and keeps them under
// a local directory. It owns the temp file once Process is called and
// removes it on every exit path, success included.
type AvatarStore struct {
	dir       string
	urlPrefix string
	logger    Logger
}

func NewAvatarStore(dir string) *AvatarStore {
	return &AvatarStore{
		dir:       dir,
		urlPrefix: avatarURLPrefix,
		logger:    defLogger{},
	}
}

func (s *AvatarStore) WithLogger(logger Logger) *AvatarStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Process resizes the uploaded image to 250x250 and stores it under the
// avatar directory as fileName. It returns the public URL of the stored
// copy.
func (s *AvatarStore) Process(ctx context.Context, tempPath, fileName string) (string, error) {
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove temp upload", "path", tempPath, "error", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "context cancelled during avatar processing")
	}

	img, err := imaging.Open(tempPath)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to open uploaded image")
	}

	img = imaging.Resize(img, avatarSize, avatarSize, imaging.Lanczos)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to create avatar directory")
	}

	dst := filepath.Join(s.dir, fileName)
	if err := imaging.Save(img, dst); err != nil {
		// a partial write must not be served later
		os.Remove(dst)
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to store avatar")
	}

	return path.Join(s.urlPrefix, fileName), nil
}

// noopAvatarProcessor still honors the temp file contract so uploads do not
// pile up when no store is configured.
type noopAvatarProcessor struct{}

func (noopAvatarProcessor) Process(_ context.Context, tempPath, _ string) (string, error) {
	os.Remove(tempPath)
	return "", errors.New("avatar storage is not configured", errors.CategoryInternal)
}

var (
	_ AvatarProcessor = (*AvatarStore)(nil)
	_ AvatarProcessor = noopAvatarProcessor{}
)
