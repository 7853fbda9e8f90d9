package room

import (
	"context"
	"errors"
	"sync"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/protocol"
	"github.com/google/uuid"
)

// LocalSeat is a player living in the same process as the room. The host
// plays through one of these instead of dialing its own server.
type LocalSeat struct {
	room   *Room
	id     string
	role   Role
	events chan protocol.ServerMessage
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Join seats a local player. buffer sizes the event queue; anything below 8
// is raised to 8.
func (r *Room) Join(ctx context.Context, name, avatar string, buffer int) (*LocalSeat, error) {
	if buffer < 8 {
		buffer = 8
	}
	seatCtx, cancel := context.WithCancel(r.ctx)
	s := &LocalSeat{
		room:   r,
		id:     "local-" + uuid.NewString(),
		events: make(chan protocol.ServerMessage, buffer),
		ctx:    seatCtx,
		cancel: cancel,
	}

	if err := r.Admit(ctx, s.peer(), name, avatar); err != nil {
		cancel()
		return nil, err
	}

	view, err := r.State(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	s.role = RoleGuest
	if view.State.Host == s.id {
		s.role = RoleHost
	}
	return s, nil
}

func (s *LocalSeat) peer() Peer {
	return Peer{ConnID: s.id, Out: s.events, Kick: s.cancel}
}

func (s *LocalSeat) ID() string { return s.id }

func (s *LocalSeat) Role() Role { return s.role }

func (s *LocalSeat) Events() <-chan protocol.ServerMessage { return s.events }

// Done is closed when the seat was kicked, left, or the room stopped.
func (s *LocalSeat) Done() <-chan struct{} { return s.ctx.Done() }

func (s *LocalSeat) RequestInfo(ctx context.Context) error {
	return s.room.RequestInfo(ctx, s.peer())
}

func (s *LocalSeat) StartGame(ctx context.Context, mode string, custom []catalog.Character) error {
	return s.room.StartGame(ctx, s.id, mode, custom)
}

func (s *LocalSeat) Guess(ctx context.Context, characterID int) error {
	return s.room.Guess(ctx, s.id, characterID)
}

// Leave gives up the seat. It is safe to call more than once.
func (s *LocalSeat) Leave(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		err = s.room.Remove(ctx, s.id)
		s.cancel()
	})
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}
