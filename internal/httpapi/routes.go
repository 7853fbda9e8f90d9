package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/DoyleJ11/guesswho/internal/ws"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Deps struct {
	Room    *room.Room
	WS      ws.Options
	JoinURL func() string
	History HistoryReader // nil when no database is configured
	Log     *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.WS.Log == nil {
		d.WS.Log = d.Log.Named("ws")
	}

	r := chi.NewRouter()

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/room", RoomSummary(d.Room))
	r.Get("/qr", QR(d.JoinURL))
	r.Get("/history", History(d.History, d.Log))
	r.Get("/ws", ws.Handler(d.Room, d.WS))
	return r
}
