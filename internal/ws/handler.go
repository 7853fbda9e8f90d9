package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/guesswho/internal/protocol"
	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
	pingInterval = 30 * time.Second
	// an avatar plus base64 overhead, or a custom roster with inline images
	readLimit = 8 << 20
)

type Options struct {
	Log            *zap.Logger
	MessageRate    float64
	MessageBurst   int
	OriginPatterns []string
}

func Handler(rm *room.Room, opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MessageRate <= 0 {
		opts.MessageRate = 20
	}
	if opts.MessageBurst < 1 {
		opts.MessageBurst = 40
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(readLimit)

		connID := uuid.NewString()
		clog := log.With(zap.String("conn", connID))

		// cancelled by the room to kick this connection
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan protocol.ServerMessage, outboxSize)
		peer := room.Peer{ConnID: connID, Out: out, Kick: cancel}

		go writePump(ctx, cancel, conn, out, clog)

		defer func() {
			rctx, rcancel := context.WithTimeout(context.WithoutCancel(r.Context()), writeTimeout)
			defer rcancel()
			if err := rm.Remove(rctx, connID); err != nil && !errors.Is(err, room.ErrStopped) {
				clog.Warn("remove on disconnect", zap.Error(err))
			}
		}()

		clog.Debug("connection opened", zap.String("remote", r.RemoteAddr))
		limiter := rate.NewLimiter(rate.Limit(opts.MessageRate), opts.MessageBurst)

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					clog.Debug("connection closed")
				default:
					clog.Debug("connection dropped", zap.Error(err))
				}
				return
			}

			if !limiter.Allow() {
				reply(ctx, out, protocol.Error{Message: "Too many messages, slow down"})
				continue
			}

			msg, err := protocol.DecodeClient(data)
			if err != nil {
				clog.Debug("rejected message", zap.Error(err))
				reply(ctx, out, protocol.Error{Message: err.Error()})
				continue
			}

			if err := dispatch(ctx, rm, peer, msg); err != nil {
				clog.Debug("room unavailable", zap.Error(err))
				return
			}
		}
	}
}

// dispatch hands msg to the room. Rejections the room already reported to
// the peer are not errors here; only a stopped room or a dead connection is.
func dispatch(ctx context.Context, rm *room.Room, peer room.Peer, msg protocol.ClientMessage) error {
	var err error
	switch m := msg.(type) {
	case protocol.JoinRoom:
		err = rm.Admit(ctx, peer, m.PlayerName, m.PlayerAvatar)
	case protocol.LeaveRoom:
		err = rm.Remove(ctx, peer.ConnID)
	case protocol.RoomInfoRequest:
		err = rm.RequestInfo(ctx, peer)
	case protocol.StartGame:
		err = rm.StartGame(ctx, peer.ConnID, m.Mode, m.CustomCharacters)
	case protocol.GuessCharacter:
		err = rm.Guess(ctx, peer.ConnID, m.CharacterID)
	}
	if errors.Is(err, room.ErrStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// reply queues a message from the handler itself. It drops the message
// rather than wait on a full outbox.
func reply(ctx context.Context, out chan<- protocol.ServerMessage, m protocol.ServerMessage) {
	select {
	case out <- m:
	case <-ctx.Done():
	default:
	}
}

func writePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan protocol.ServerMessage, log *zap.Logger) {
	defer cancel()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case m := <-out:
			payload, err := protocol.EncodeServer(m)
			if err != nil {
				log.Error("encode", zap.Error(err))
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err = conn.Write(wctx, websocket.MessageText, payload)
			wcancel()
			if err != nil {
				log.Debug("write failed", zap.Error(err))
				return
			}

		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}
