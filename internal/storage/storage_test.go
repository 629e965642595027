package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.SaveFile(ctx, "settlements/2026-03.xlsx", strings.NewReader("march")))
	require.NoError(t, s.SaveFile(ctx, "settlements/2026-02.xlsx", strings.NewReader("feb")))

	exists, size, err := s.FileExists(ctx, "settlements/2026-03.xlsx")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(5), size)

	rc, err := s.ReadFile(ctx, "settlements/2026-03.xlsx")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "march", string(body))

	keys, err := s.List(ctx, "settlements/")
	require.NoError(t, err)
	assert.Equal(t, []string{"settlements/2026-02.xlsx", "settlements/2026-03.xlsx"}, keys)

	require.NoError(t, s.DeleteFile(ctx, "settlements/2026-02.xlsx"))
	require.NoError(t, s.DeleteFile(ctx, "settlements/2026-02.xlsx"))
	exists, _, err = s.FileExists(ctx, "settlements/2026-02.xlsx")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "a/../../b"} {
		_, err := s.ReadFile(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
