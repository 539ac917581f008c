package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLoader(calls *int32) LoadFunc[string] {
	return func(path string) (string, error) {
		atomic.AddInt32(calls, 1)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func writeAt(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSnapshotReusesUnchangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	writeAt(t, path, "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var calls int32
	s := New(readLoader(&calls), constants.InvalidationModTime, zap.NewNop())

	for i := 0; i < 3; i++ {
		v, err := s.Get(path)
		require.NoError(t, err)
		assert.Equal(t, "v1", v)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, s.Loads())
}

func TestSnapshotReloadsOnModTimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	writeAt(t, path, "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var calls int32
	s := New(readLoader(&calls), constants.InvalidationModTime, nil)

	v, err := s.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	writeAt(t, path, "v2", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	v, err = s.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 2, s.Loads())
}

func TestSnapshotHashDetectsSameSizeSameTimeEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeAt(t, path, "aaaa", mod)

	var mtimeCalls, hashCalls int32
	byTime := New(readLoader(&mtimeCalls), constants.InvalidationModTime, nil)
	byHash := New(readLoader(&hashCalls), constants.InvalidationHash, nil)

	_, err := byTime.Get(path)
	require.NoError(t, err)
	_, err = byHash.Get(path)
	require.NoError(t, err)

	writeAt(t, path, "bbbb", mod)

	v, err := byTime.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", v, "mtime invalidation cannot see an edit that keeps size and time")

	v, err = byHash.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "bbbb", v)
}

func TestSnapshotMissingFileIsNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	writeAt(t, path, "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var calls int32
	s := New(readLoader(&calls), constants.InvalidationModTime, nil)
	_, err := s.Get(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = s.Get(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	writeAt(t, path, "v3", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	v, err := s.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "v3", v)
}

func TestSnapshotLoadErrorIsNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	writeAt(t, path, "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	fail := true
	var calls int32
	s := New(func(p string) (string, error) {
		atomic.AddInt32(&calls, 1)
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	}, constants.InvalidationModTime, nil)

	_, err := s.Get(path)
	require.Error(t, err)

	fail = false
	v, err := s.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSnapshotConcurrentGetLoadsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	writeAt(t, path, "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var calls int32
	s := New(func(p string) (string, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return "v1", nil
	}, constants.InvalidationModTime, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Get(path)
			assert.NoError(t, err)
			assert.Equal(t, "v1", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSnapshotInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	writeAt(t, path, "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var calls int32
	s := New(readLoader(&calls), "", nil)
	_, err := s.Get(path)
	require.NoError(t, err)

	s.Invalidate()
	_, err = s.Get(path)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acidentes.csv")
	writeAt(t, path, "abc", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	key, err := Fingerprint(path, constants.InvalidationHash)
	require.NoError(t, err)
	assert.Equal(t, int64(3), key.Size)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", key.Hash)

	key, err = Fingerprint(path, constants.InvalidationModTime)
	require.NoError(t, err)
	assert.Empty(t, key.Hash)

	_, err = Fingerprint(filepath.Join(t.TempDir(), "missing"), constants.InvalidationModTime)
	assert.Error(t, err)
}
