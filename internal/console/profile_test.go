package console

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DoyleJ11/guesswho/internal/protocol"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfile(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = ResolveProfile(store, "", "")
	assert.Error(t, err)

	avatar := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(avatar, []byte("\x89PNG\r\n\x1a\n"), 0o644))

	p, err := ResolveProfile(store, "  Hana ", avatar)
	require.NoError(t, err)
	assert.Equal(t, "Hana", p.Name)
	assert.True(t, strings.HasPrefix(p.Avatar, "data:image/png;base64,"))

	// remembered
	again, err := ResolveProfile(store, "", "")
	require.NoError(t, err)
	assert.Equal(t, p, again)

	renamed, err := ResolveProfile(store, "Hanako", "")
	require.NoError(t, err)
	assert.Equal(t, "Hanako", renamed.Name)
	assert.Equal(t, p.Avatar, renamed.Avatar)
}

func TestResolveProfileRejectsLongName(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = ResolveProfile(store, strings.Repeat("x", 40), "")
	assert.ErrorIs(t, err, protocol.ErrBadMessage)

	_, err = store.LoadProfile()
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
