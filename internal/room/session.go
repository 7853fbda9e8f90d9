package room

import (
	"slices"

	"github.com/DoyleJ11/guesswho/internal/protocol"
	"go.uber.org/zap"
)

func (r *Room) admit(m Admit) error {
	id := m.Peer.ConnID

	switch {
	case r.closed:
		r.send(m.Peer, protocol.Error{Message: protocol.MsgRoomNotFound})
		return ErrRoomClosed
	case r.state.indexOf(id) >= 0:
		r.send(m.Peer, protocol.Error{Message: "You are already in the room"})
		return ErrAlreadyJoined
	case len(r.state.Players) >= MaxPlayers:
		r.log.Info("admission refused", zap.String("conn", id), zap.String("name", m.Name), zap.Error(ErrRoomFull))
		r.send(m.Peer, protocol.Error{Message: protocol.MsgRoomFull})
		return ErrRoomFull
	}

	if len(r.state.Players) == 0 {
		r.state.Host = id
	}
	r.state.Players = append(r.state.Players, Player{ID: id, Name: m.Name, Avatar: m.Avatar})
	r.peers[id] = m.Peer

	r.log.Info("player admitted",
		zap.String("conn", id),
		zap.String("name", m.Name),
		zap.Stringer("role", r.roleOf(id)),
		zap.Int("players", len(r.state.Players)),
	)

	r.broadcast(protocol.PlayerJoined{Players: r.wirePlayers()})
	r.deliver(id, r.roomInfoFor(id))
	return nil
}

func (r *Room) remove(id string) {
	i := r.state.indexOf(id)
	if i < 0 {
		return
	}

	left := r.state.Players[i]
	r.state.Players = slices.Delete(slices.Clone(r.state.Players), i, i+1)
	delete(r.peers, id)

	r.log.Info("player left",
		zap.String("conn", id),
		zap.String("name", left.Name),
		zap.Int("players", len(r.state.Players)),
	)

	if len(r.state.Players) == 0 {
		r.state = State{}
		return
	}
	r.broadcast(protocol.PlayerLeft{Players: r.wirePlayers()})
}

func (r *Room) roleOf(id string) Role {
	if id != "" && id == r.state.Host {
		return RoleHost
	}
	return RoleGuest
}
