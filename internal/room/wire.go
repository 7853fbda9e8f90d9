package room

import (
	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/protocol"
)

func (r *Room) wirePlayers() []protocol.Player {
	out := make([]protocol.Player, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		out = append(out, protocol.Player{ID: p.ID, Name: p.Name, Avatar: p.Avatar, Ready: p.Ready})
	}
	return out
}

// roomInfoFor builds id's view of the room. Only id's own character is
// included; a connection that is not seated sees the roster alone.
func (r *Room) roomInfoFor(id string) protocol.RoomInfo {
	info := protocol.RoomInfo{
		Host:    r.state.Host,
		Players: r.wirePlayers(),
		Mode:    r.state.Mode,
	}
	if r.state.indexOf(id) >= 0 {
		info.YourID = id
	}

	if rd := r.state.Round; rd != nil {
		gs := &protocol.GameState{Characters: catalog.Clone(rd.Roster), Winner: rd.Winner}
		if seat, ok := rd.SeatOf(id); ok && info.YourID != "" {
			ch := seat.Character
			gs.YourCharacter = &ch
		}
		info.GameState = gs
	}
	return info
}

func (r *Room) gameStartedFor(seat int) protocol.GameStarted {
	rd := r.state.Round
	me, them := rd.Seats[seat], rd.Seats[1-seat]
	opp, _ := r.state.player(them.PlayerID)

	return protocol.GameStarted{
		Characters:    catalog.Clone(rd.Roster),
		YourCharacter: me.Character,
		YourID:        me.PlayerID,
		OpponentID:    them.PlayerID,
		Opponent:      protocol.Opponent{Name: opp.Name, Avatar: opp.Avatar},
	}
}
