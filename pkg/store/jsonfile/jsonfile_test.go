package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "budgets.json"), nil)

	_, ok, err := s.Get(context.Background(), 573001112222)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "budgets.json")
	s := New(path, nil)

	require.NoError(t, s.Set(ctx, 573001112222, 2000000))
	require.NoError(t, s.Set(ctx, 573009998888, 500000))

	amount, ok, err := s.Get(ctx, 573001112222)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2000000), amount)

	// Overwrite.
	require.NoError(t, s.Set(ctx, 573001112222, 750000))
	amount, _, err = s.Get(ctx, 573001112222)
	require.NoError(t, err)
	assert.Equal(t, int64(750000), amount)

	// A fresh store over the same file sees the same data.
	s2 := New(path, nil)
	amount, ok, err = s2.Get(ctx, 573009998888)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(500000), amount)
}

func TestFileFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budgets.json")
	s := New(path, nil)

	require.NoError(t, s.Set(ctx, 573001112222, 2000000))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"573001112222": 2000000}`, string(data))
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	s := New(path, nil)
	_, _, err := s.Get(context.Background(), 573001112222)
	assert.Error(t, err)
}
