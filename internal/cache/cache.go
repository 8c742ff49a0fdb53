// Package cache stores finished extraction results keyed by image content,
// so re-uploads of the same photo inside the TTL window skip the OCR and LLM
// round trips entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/medishare/medlabel/internal/entity"
)

// DefaultTTL matches the OCR provider's fair-use guidance for re-polling the
// same document.
const DefaultTTL = 24 * time.Hour

// Store is a TTL-bounded extraction result cache. A miss and an expired
// entry are indistinguishable to callers.
type Store interface {
	Get(ctx context.Context, key string) (entity.Record, bool, error)
	Put(ctx context.Context, key string, rec entity.Record) error
	Close() error
}

// Key derives the cache key for an image: hex SHA-256 of its bytes. URLs are
// keyed by the URL string itself via KeyForURL; the prefixes keep the two
// keyspaces disjoint even when a URL string equals an image's bytes.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return "img:" + hex.EncodeToString(sum[:])
}

// KeyForURL keys remote images by their address. The URL, not the content,
// is what the caller identifies the image by.
func KeyForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "url:" + hex.EncodeToString(sum[:])
}
