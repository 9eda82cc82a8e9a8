package kv

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	mem, err := OpenBadger("", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	disk, err := OpenBadger(t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = disk.Close() })

	return map[string]Store{
		"badger-memory": mem,
		"badger-disk":   disk,
		"map":           NewMemoryStore(),
	}
}

func collect(t *testing.T, r Reader, prefix []byte) []string {
	t.Helper()
	var out []string
	err := r.Iterate(prefix, func(key, value []byte) error {
		out = append(out, string(key)+"="+string(value))
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get([]byte("missing"))
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set([]byte("a"), []byte("1")))
			got, err := s.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), got)

			ok, err := s.Has([]byte("a"))
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, s.Delete([]byte("a")))
			ok, err = s.Has([]byte("a"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_IterateOrderAndPrefix(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Batch(func(w Writer) error {
				for _, k := range []string{"p/3", "p/1", "q/1", "p/2"} {
					if err := w.Set([]byte(k), []byte(k[2:])); err != nil {
						return err
					}
				}
				return nil
			}))

			assert.Equal(t, []string{"p/1=1", "p/2=2", "p/3=3"}, collect(t, s, []byte("p/")))

			stop := errors.New("stop")
			seen := 0
			err := s.Iterate([]byte("p/"), func(key, value []byte) error {
				seen++
				return stop
			})
			assert.ErrorIs(t, err, stop)
			assert.Equal(t, 1, seen)
		})
	}
}

func TestStore_BatchRollsBackOnError(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			boom := errors.New("boom")
			err := s.Batch(func(w Writer) error {
				require.NoError(t, w.Set([]byte("x"), []byte("1")))
				return boom
			})
			assert.ErrorIs(t, err, boom)

			_, err = s.Get([]byte("x"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(dir, testLogger())
	require.NoError(t, err)
	require.NoError(t, s.Set([]byte("k"), []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir, testLogger())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestOverlay(t *testing.T) {
	base := NewMemoryStore()
	require.NoError(t, base.Set([]byte("p/1"), []byte("base1")))
	require.NoError(t, base.Set([]byte("p/2"), []byte("base2")))

	o := NewOverlay(base)
	require.NoError(t, o.Set([]byte("p/3"), []byte("new3")))
	require.NoError(t, o.Set([]byte("p/1"), []byte("new1")))
	require.NoError(t, o.Delete([]byte("p/2")))

	t.Run("reads see buffered writes", func(t *testing.T) {
		got, err := o.Get([]byte("p/1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("new1"), got)

		_, err = o.Get([]byte("p/2"))
		assert.ErrorIs(t, err, ErrNotFound)

		assert.Equal(t, []string{"p/1=new1", "p/3=new3"}, collect(t, o, []byte("p/")))
		assert.Equal(t, 3, o.Len())
	})

	t.Run("parent untouched until commit", func(t *testing.T) {
		assert.Equal(t, []string{"p/1=base1", "p/2=base2"}, collect(t, base, []byte("p/")))
	})

	t.Run("nested overlay discards", func(t *testing.T) {
		inner := NewOverlay(o)
		require.NoError(t, inner.Set([]byte("p/4"), []byte("inner")))
		assert.Len(t, collect(t, inner, []byte("p/")), 3)
		assert.Len(t, collect(t, o, []byte("p/")), 2)
	})

	t.Run("commit", func(t *testing.T) {
		require.NoError(t, base.Batch(o.Commit))
		assert.Equal(t, []string{"p/1=new1", "p/3=new3"}, collect(t, base, []byte("p/")))
	})
}
