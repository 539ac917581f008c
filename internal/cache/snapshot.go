// Package cache keeps the last loaded snapshot of a source file in memory and
// reloads it when the file identity changes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies one version of a source file.
type Key struct {
	Path    string
	Size    int64
	ModTime time.Time
	Hash    string // only set with constants.InvalidationHash
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%d|%d|%s", k.Path, k.Size, k.ModTime.UnixNano(), k.Hash)
}

// Equal reports whether both keys identify the same file version.
func (k Key) Equal(other Key) bool {
	return k.Path == other.Path &&
		k.Size == other.Size &&
		k.ModTime.Equal(other.ModTime) &&
		k.Hash == other.Hash
}

// Fingerprint computes the key of the file at path. With
// constants.InvalidationHash the SHA-256 of the content is included.
func Fingerprint(path, invalidation string) (Key, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Key{}, err
	}
	key := Key{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	if invalidation == constants.InvalidationHash {
		hash, err := hashFile(path)
		if err != nil {
			return Key{}, err
		}
		key.Hash = hash
	}
	return key, nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LoadFunc builds a snapshot from the file at path.
type LoadFunc[T any] func(path string) (T, error)

// Snapshot caches the value loaded from one file.
type Snapshot[T any] struct {
	mu           sync.Mutex
	load         LoadFunc[T]
	invalidation string
	logger       *zap.Logger

	key    Key
	value  T
	loaded bool

	group singleflight.Group
	loads int
}

// New returns an empty snapshot cache. invalidation is constants.InvalidationModTime
// or constants.InvalidationHash.
func New[T any](load LoadFunc[T], invalidation string, logger *zap.Logger) *Snapshot[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if invalidation != constants.InvalidationHash {
		invalidation = constants.InvalidationModTime
	}
	return &Snapshot[T]{load: load, invalidation: invalidation, logger: logger}
}

// Get returns the cached value when the file at path is unchanged and loads
// it otherwise. Concurrent callers share a single load. Load failures are
// not cached.
func (s *Snapshot[T]) Get(path string) (T, error) {
	key, err := Fingerprint(path, s.invalidation)
	if err != nil {
		// The loader reports the missing or unreadable file in its own terms.
		s.Invalidate()
		return s.load(path)
	}

	s.mu.Lock()
	if s.loaded && s.key.Equal(key) {
		value := s.value
		s.mu.Unlock()
		return value, nil
	}
	s.mu.Unlock()

	v, err, shared := s.group.Do(key.String(), func() (interface{}, error) {
		s.mu.Lock()
		if s.loaded && s.key.Equal(key) {
			value := s.value
			s.mu.Unlock()
			return value, nil
		}
		s.mu.Unlock()

		value, err := s.load(path)
		if err != nil {
			return value, err
		}

		s.mu.Lock()
		s.key = key
		s.value = value
		s.loaded = true
		s.loads++
		s.mu.Unlock()

		s.logger.Info("source snapshot loaded",
			zap.String("op", "cache.Get"),
			zap.String("path", path),
			zap.Int64("size", key.Size),
			zap.Time("modTime", key.ModTime),
			zap.String("invalidation", s.invalidation),
		)
		return value, nil
	})
	if shared {
		s.logger.Debug("joined in-flight snapshot load",
			zap.String("op", "cache.Get"),
			zap.String("path", path),
		)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value.
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.key = Key{}
	s.loaded = false
}

// Loads returns how many times the snapshot has been (re)loaded.
func (s *Snapshot[T]) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
