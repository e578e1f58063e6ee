package persist

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attrs.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveThenLoadAllRoundTrips(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Save("svc1", types.KW{"count": int64(3), "name": "svc-one"}))

	kw, err := s.LoadAll("svc1", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, kw["count"])
	assert.Equal(t, "svc-one", kw["name"])
}

func TestLoadAllOnUnknownOwnerIsEmpty(t *testing.T) {
	s := openTemp(t)
	kw, err := s.LoadAll("nope", nil)
	require.NoError(t, err)
	assert.Empty(t, kw)
}

func TestRemoveBucketThenListOmitsOwner(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Save("svc1", types.KW{"a": 1}))
	require.NoError(t, s.Remove("svc1", nil))

	names, err := s.List("", nil)
	require.NoError(t, err)
	assert.NotContains(t, names, "svc1")
}

func TestRemoveSingleKey(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Save("svc1", types.KW{"a": 1, "b": 2}))
	require.NoError(t, s.Remove("svc1", "a"))

	kw, err := s.LoadAll("svc1", nil)
	require.NoError(t, err)
	_, hasA := kw["a"]
	assert.False(t, hasA)
	assert.Contains(t, kw, "b")
}
