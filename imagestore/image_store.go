// Package imagestore stores post image attachments. The store hands back an
// opaque key persisted on the post; URL turns a key back into something a
// template can point an <img> at.
package imagestore

import (
	"fmt"
	"io"

	"github.com/akorolkov/postline/utils"
	"github.com/google/uuid"
)

type ImageStore interface {
	// Save stores the image under a key namespaced by scope (the post
	// identifier) and returns the key.
	Save(r io.Reader, scope string, fileName string) (key string, err error)
	URL(key string) string
}

// imageKey builds "posts/<scope>/<random>.<ext>" so uploads for the same
// post live together and names never collide.
func imageKey(scope, fileName string) string {
	return fmt.Sprintf("posts/%s/%s%s", scope, uuid.New().String(), utils.GetUrlExtNameWithDot(fileName))
}
