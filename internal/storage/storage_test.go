package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/mod"
	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func sampleMod(name string) mod.Mod {
	return mod.Mod{
		Name:    name,
		Version: "0.1",
		Characters: []catalog.Character{
			{ID: 1, Name: "Ahri", Image: "data:image/png;base64,AA=="},
			{ID: 2, Name: "Zed", Image: "data:image/jpeg;base64,AQ=="},
		},
	}
}

func TestModRoundTrip(t *testing.T) {
	s := newStore(t)
	m := sampleMod("League Champs")

	file, err := s.SaveMod(m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "mods", "league-champs.json"), file)

	got, err := s.LoadMod("League Champs")
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Version, got.Version)
	assert.Equal(t, m.Characters, got.Characters)

	bySlug, err := s.LoadMod("league-champs")
	require.NoError(t, err)
	assert.Equal(t, got, bySlug)
}

func TestSaveModOverwrites(t *testing.T) {
	s := newStore(t)
	m := sampleMod("Pack")
	_, err := s.SaveMod(m)
	require.NoError(t, err)

	m.Version = "0.2"
	_, err = s.SaveMod(m)
	require.NoError(t, err)

	got, err := s.LoadMod("Pack")
	require.NoError(t, err)
	assert.Equal(t, "0.2", got.Version)
}

func TestLoadMods(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"Zoo", "Anime", "Movies"} {
		_, err := s.SaveMod(sampleMod(name))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "mods", "broken.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "mods", "README.txt"), []byte("hi"), 0o644))

	mods, err := s.LoadMods()
	require.NoError(t, err)
	require.Len(t, mods, 3)
	assert.Equal(t, "Anime", mods[0].Name)
	assert.Equal(t, "Movies", mods[1].Name)
	assert.Equal(t, "Zoo", mods[2].Name)
}

func TestLoadModMissing(t *testing.T) {
	_, err := newStore(t).LoadMod("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileRoundTrip(t *testing.T) {
	s := newStore(t)

	_, err := s.LoadProfile()
	assert.ErrorIs(t, err, ErrNotFound)

	p := Profile{Name: "Hana", Avatar: "data:image/png;base64,AA=="}
	require.NoError(t, s.SaveProfile(p))

	got, err := s.LoadProfile()
	require.NoError(t, err)
	assert.Equal(t, p, got)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestNewFileStoreRejectsEmptyDir(t *testing.T) {
	_, err := NewFileStore("", nil)
	assert.Error(t, err)
}

// Runs only when a scratch database is provided.
func TestHistory(t *testing.T) {
	dsn := os.Getenv("GUESSWHO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("GUESSWHO_TEST_DATABASE_URL not set")
	}

	h, err := OpenHistory(dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.db.Where("1 = 1").Delete(&RoundResult{}).Error)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	h.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	ch := make(chan room.Result, 3)
	for _, winner := range []string{"Hana", "Gus", "Hana"} {
		ch <- room.Result{
			Mode:            catalog.ModeClassic,
			WinnerName:      winner,
			LoserName:       "other",
			WinnerCharacter: catalog.Character{ID: 1, Name: "Alice"},
			LoserCharacter:  catalog.Character{ID: 2, Name: "Bob"},
			Correct:         true,
		}
	}
	close(ch)
	require.NoError(t, h.Drain(ctx, ch))

	rows, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Hana", rows[0].WinnerName)
	assert.Equal(t, "Gus", rows[1].WinnerName)
	assert.Equal(t, "Alice", rows[0].WinnerCharacter)
	assert.True(t, rows[0].PlayedAt.After(rows[1].PlayedAt))
}
