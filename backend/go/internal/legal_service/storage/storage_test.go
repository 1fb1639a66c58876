package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveAndResolve(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	loc, err := l.Save(ctx, "Zakon o radu.pdf", strings.NewReader("%PDF-1.4"), 8)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc, "laws/"))
	assert.True(t, strings.HasSuffix(loc, "_Zakon o radu.pdf"))

	path, cleanup, err := l.Resolve(ctx, loc)
	require.NoError(t, err)
	defer cleanup()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.NoError(t, l.Ping(ctx))
}

func TestLocal_SameNameGetsDistinctLocations(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	a, err := l.Save(ctx, "ustav.pdf", strings.NewReader("a"), 1)
	require.NoError(t, err)
	b, err := l.Save(ctx, "ustav.pdf", strings.NewReader("b"), 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocal_StripsDirectoriesFromName(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir)
	require.NoError(t, err)

	loc, err := l.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(loc, "_passwd"))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(loc)))
	assert.NoError(t, err)
}

func TestLocal_ResolveRejectsEscapes(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, _, err = l.Resolve(context.Background(), "../outside.pdf")
	assert.Error(t, err)
}
