package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/engine"
	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeHistory struct {
	rows  []storage.RoundResult
	err   error
	limit int
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]storage.RoundResult, error) {
	f.limit = limit
	return f.rows, f.err
}

func newServer(t *testing.T, h HistoryReader) (*httptest.Server, *room.Room) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rm := room.New(ctx, room.WithPicker(engine.Scripted(0, 1)), room.WithLogger(zaptest.NewLogger(t)))
	d := Deps{
		Room:    rm,
		JoinURL: func() string { return "ws://192.168.1.20:3000/ws" },
		Log:     zaptest.NewLogger(t),
	}
	if h != nil {
		d.History = h
	}
	srv := httptest.NewServer(SetupRoutes(d))
	t.Cleanup(srv.Close)
	return srv, rm
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t, nil)
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/healthz").StatusCode)
}

func TestRoomSummary(t *testing.T) {
	srv, rm := newServer(t, nil)
	ctx := context.Background()

	resp := get(t, srv.URL+"/room")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s roomSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.True(t, s.Open)
	assert.Empty(t, s.Players)

	host, err := rm.Join(ctx, "Hana", "", 0)
	require.NoError(t, err)
	_, err = rm.Join(ctx, "Gus", "", 0)
	require.NoError(t, err)
	require.NoError(t, host.StartGame(ctx, catalog.ModeClassic, nil))

	resp = get(t, srv.URL+"/room")
	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, host.ID(), raw["host"])
	assert.Equal(t, true, raw["inRound"])
	assert.Equal(t, false, raw["open"])
	assert.Len(t, raw["players"], 2)
	assert.NotContains(t, raw, "gameState")
}

func TestQR(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp := get(t, srv.URL+"/qr")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		srv, _ := newServer(t, nil)
		assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/history").StatusCode)
	})

	t.Run("rows", func(t *testing.T) {
		h := &fakeHistory{rows: []storage.RoundResult{{ID: 1, WinnerName: "Hana", Mode: "classic"}}}
		srv, _ := newServer(t, h)

		resp := get(t, srv.URL+"/history?limit=500")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, maxHistory, h.limit)

		var rows []storage.RoundResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "Hana", rows[0].WinnerName)
	})

	t.Run("empty is a list", func(t *testing.T) {
		srv, _ := newServer(t, &fakeHistory{})
		resp := get(t, srv.URL+"/history")
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		assert.JSONEq(t, "[]", buf.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		srv, _ := newServer(t, &fakeHistory{})
		assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/history?limit=zero").StatusCode)
	})

	t.Run("store error", func(t *testing.T) {
		srv, _ := newServer(t, &fakeHistory{err: errors.New("db down")})
		assert.Equal(t, http.StatusInternalServerError, get(t, srv.URL+"/history").StatusCode)
	})
}

func TestWSRejectsPlainHTTP(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp := get(t, srv.URL+"/ws")
	assert.NotEqual(t, http.StatusSwitchingProtocols, resp.StatusCode)
}
