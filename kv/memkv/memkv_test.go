package memkv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertGet(t *testing.T) {
	s := New()

	_, ok, err := s.Get(1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Insert(1, []byte("a")))
	value, ok, err := s.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("a"), value)
}

func TestIterIsSorted(t *testing.T) {
	s := New()
	for _, k := range []uint64{9, 2, 7, 1} {
		require.NoError(t, s.Insert(k, nil))
	}

	var seen []uint64
	require.NoError(t, s.Iter(func(key uint64, _ []byte) error {
		seen = append(seen, key)
		return nil
	}))
	require.Equal(t, []uint64{1, 2, 7, 9}, seen)
}

func TestKeyedInsertGet(t *testing.T) {
	s := New()

	_, ok, err := s.GetKey([]byte("example.com"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.InsertKey([]byte("example.com"), []byte{0, 0, 0, 0, 0, 0, 0, 1}))
	value, ok, err := s.GetKey([]byte("example.com"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, value)
}

func TestIterKeysSorted(t *testing.T) {
	s := New()
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, s.InsertKey([]byte(k), nil))
	}

	var seen []string
	require.NoError(t, s.IterKeys(func(key, _ []byte) error {
		seen = append(seen, string(key))
		return nil
	}))
	require.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestClosedStoreErrors(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	require.Error(t, s.Insert(1, nil))
	_, _, err := s.Get(1)
	require.Error(t, err)
	require.Error(t, s.Iter(func(uint64, []byte) error { return nil }))
}
