package imagestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalImageStore keeps images on disk under a media root; the server
// serves the root at urlPrefix (typically /media/).
type LocalImageStore struct {
	root      string
	urlPrefix string
}

func NewLocalImageStore(root, urlPrefix string) *LocalImageStore {
	return &LocalImageStore{root: root, urlPrefix: urlPrefix}
}

func (s *LocalImageStore) Save(r io.Reader, scope string, fileName string) (string, error) {
	key := imageKey(scope, fileName)
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "fail to create media dir")
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "fail to create media file")
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "fail to write media file")
	}
	return key, nil
}

func (s *LocalImageStore) URL(key string) string {
	return s.urlPrefix + key
}
