package imagestore

import (
	"io"
	"io/ioutil"
)

// FakeImageStore swallows uploads and remembers what was saved, for tests.
type FakeImageStore struct {
	Saved map[string][]byte
}

func NewFakeImageStore() *FakeImageStore {
	return &FakeImageStore{Saved: make(map[string][]byte)}
}

func (s *FakeImageStore) Save(r io.Reader, scope string, fileName string) (string, error) {
	key := imageKey(scope, fileName)
	body, err := ioutil.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.Saved[key] = body
	return key, nil
}

func (s *FakeImageStore) URL(key string) string {
	return "/media/" + key
}
