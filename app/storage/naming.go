package storage

import (
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

const hashNameLength = 40

// HashName derives a collision resistant file name from content, keeping ext.
// A random salt is mixed in so two uploads of identical bytes never share a
// file that deleting one post would remove from under the other.
func HashName(content []byte, ext string) string {
	salt := uuid.New()
	h := sha3.New256()
	h.Write(salt[:])
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:hashNameLength] + ext
}
