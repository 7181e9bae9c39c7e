// Package cache stores expert-annotation results so repeat runs over the
// same dumps never pay for the same answer twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	"github.com/examsift/examsift/internal/model"
)

// Cache defines the storage interface shared by the memory, disk, and
// layered implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// AnnotationKey addresses a cached annotation by what produced it: the
// provider, the model, and the question content. Questions keep their
// cache entries across runs even when page numbers or IDs shift.
func AnnotationKey(provider, modelName string, q *model.Question) string {
	h := sha256.New()
	io.WriteString(h, provider)
	io.WriteString(h, "\x00")
	io.WriteString(h, modelName)
	io.WriteString(h, "\x00")
	io.WriteString(h, q.Description)
	for _, letter := range q.SortedOptions() {
		io.WriteString(h, "\x00")
		io.WriteString(h, letter)
		io.WriteString(h, "=")
		io.WriteString(h, q.Options[letter])
	}
	return "examsift:v1:" + hex.EncodeToString(h.Sum(nil))
}
