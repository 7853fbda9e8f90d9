package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	qrSize       = 320
	maxHistory   = 100
	queryTimeout = 3 * time.Second
)

// HistoryReader is the read side of the round history.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]storage.RoundResult, error)
}

type playerSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

type roomSummary struct {
	Host    string          `json:"host"`
	Players []playerSummary `json:"players"`
	Mode    string          `json:"mode"`
	InRound bool            `json:"inRound"`
	Open    bool            `json:"open"`
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// RoomSummary reports who is in the room without revealing anything about
// the round in progress.
func RoomSummary(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		v, err := rm.State(ctx)
		if err != nil {
			http.Error(w, "room unavailable", http.StatusServiceUnavailable)
			return
		}

		s := roomSummary{
			Host:    v.State.Host,
			Players: make([]playerSummary, 0, len(v.State.Players)),
			Mode:    v.State.Mode,
			InRound: v.State.Round != nil && !v.State.Round.Over(),
			Open:    !v.Closed && len(v.State.Players) < room.MaxPlayers,
		}
		for _, p := range v.State.Players {
			s.Players = append(s.Players, playerSummary{ID: p.ID, Name: p.Name, IsHost: p.ID == v.State.Host})
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// QR renders the join address as a PNG.
func QR(joinURL func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		png, err := qrcode.Encode(joinURL(), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(png)
	}
}

func History(h HistoryReader, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h == nil {
			http.Error(w, "history is not enabled", http.StatusNotFound)
			return
		}

		limit := 20
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = min(n, maxHistory)
		}

		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		rows, err := h.Recent(ctx, limit)
		if err != nil {
			log.Error("history query", zap.Error(err))
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []storage.RoundResult{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
