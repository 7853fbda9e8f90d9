package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/mod"
	"github.com/DoyleJ11/guesswho/internal/protocol"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type startCall struct {
	mode   string
	custom []catalog.Character
}

type fakeSeat struct {
	events  chan protocol.ServerMessage
	done    chan struct{}
	infos   int
	starts  []startCall
	guesses []int
	left    int
}

func newFakeSeat() *fakeSeat {
	return &fakeSeat{events: make(chan protocol.ServerMessage, 8), done: make(chan struct{})}
}

func (f *fakeSeat) ID() string { return "me" }
func (f *fakeSeat) Events() <-chan protocol.ServerMessage { return f.events }
func (f *fakeSeat) Done() <-chan struct{} { return f.done }
func (f *fakeSeat) RequestInfo(context.Context) error { f.infos++; return nil }
func (f *fakeSeat) Guess(_ context.Context, id int) error { f.guesses = append(f.guesses, id); return nil }
func (f *fakeSeat) Leave(context.Context) error { f.left++; return nil }
func (f *fakeSeat) StartGame(_ context.Context, mode string, custom []catalog.Character) error {
	f.starts = append(f.starts, startCall{mode, custom})
	return nil
}

func TestRunCommands(t *testing.T) {
	seat := newFakeSeat()
	var out bytes.Buffer
	in := strings.NewReader("info\nstart animals\nguess 17\nguess x\nbogus\n\nquit\ninfo\n")

	c := New(seat, in, &out, Options{Log: zaptest.NewLogger(t)})
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 1, seat.infos)
	require.Len(t, seat.starts, 1)
	assert.Equal(t, "animals", seat.starts[0].mode)
	assert.Nil(t, seat.starts[0].custom)
	assert.Equal(t, []int{17}, seat.guesses)
	assert.Equal(t, 1, seat.left)
	assert.Contains(t, out.String(), `not a character id: "x"`)
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}

func TestRunEndsOnEOF(t *testing.T) {
	seat := newFakeSeat()
	var out bytes.Buffer
	require.NoError(t, New(seat, strings.NewReader(""), &out, Options{}).Run(context.Background()))
	assert.Equal(t, 1, seat.left)
}

func TestRunSeatLost(t *testing.T) {
	seat := newFakeSeat()
	seat.events <- protocol.Error{Message: protocol.MsgRoomNotFound}
	close(seat.done)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	var out bytes.Buffer
	errc := make(chan error, 1)
	go func() { errc <- New(seat, r, &out, Options{}).Run(context.Background()) }()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrSeatLost)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Contains(t, out.String(), "Room not found")
	assert.Equal(t, 0, seat.left)
}

func TestShowRound(t *testing.T) {
	seat := newFakeSeat()
	var out bytes.Buffer
	c := New(seat, strings.NewReader(""), &out, Options{})
	roster := catalog.New().Resolve(catalog.ModeClassic)

	c.show(protocol.GameStarted{
		Characters:    roster,
		YourCharacter: roster[0],
		YourID:        "me",
		OpponentID:    "them",
		Opponent:      protocol.Opponent{Name: "Gus"},
	})
	assert.Contains(t, out.String(), "Round started against Gus. Your character is Alice (#1).")
	assert.Contains(t, out.String(), " 16  Paul")

	out.Reset()
	c.show(protocol.GameOver{
		Winner:            "them",
		GuesserName:       "Gus",
		GuesserCharacter:  roster[1],
		OpponentName:      "Hana",
		OpponentCharacter: roster[0],
	})
	assert.Equal(t, "You lose. Gus had Bob, Hana had Alice.\n", out.String())
}

func TestStartSavedMod(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	m := mod.Mod{Name: "Champs", Characters: []catalog.Character{
		{ID: 1, Name: "Ahri", Image: "data:image/png;base64,AA=="},
		{ID: 2, Name: "Zed", Image: "data:image/png;base64,AQ=="},
	}}
	_, err = store.SaveMod(m)
	require.NoError(t, err)

	seat := newFakeSeat()
	var out bytes.Buffer
	c := New(seat, strings.NewReader(""), &out, Options{Store: store})

	_, err = c.exec(context.Background(), "start mod Champs")
	require.NoError(t, err)
	require.Len(t, seat.starts, 1)
	assert.Equal(t, m.Characters, seat.starts[0].custom)

	_, err = c.exec(context.Background(), "start mod Missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	c.listModes()
	assert.Contains(t, out.String(), "mod Champs")
}

func TestImportMod(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, mod.DescriptorFile), []byte(`{
		"name": "Tiny",
		"characters": [{"id": 1, "name": "Dot", "image": "data:image/png;base64,AA=="}]
	}`), 0o644))

	store, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	var out bytes.Buffer
	c := New(newFakeSeat(), strings.NewReader(""), &out, Options{Store: store})

	_, err = c.exec(context.Background(), "import "+dir)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Imported "Tiny"`)

	got, err := store.LoadMod("tiny")
	require.NoError(t, err)
	assert.Equal(t, "Tiny", got.Name)
}
