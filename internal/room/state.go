package room

import (
	"slices"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/engine"
)

const MaxPlayers = 2

type Role int

const (
	RoleHost Role = iota
	RoleGuest
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "guest"
}

type Player struct {
	ID     string
	Name   string
	Avatar string
	Ready  bool
}

// State is the authoritative room record. Players[0] is the host seat and
// Players[1] the guest seat; the order decides who is player1 in a round.
type State struct {
	Host    string
	Players []Player
	Mode    string
	Round   *engine.Round
}

func (s State) Empty() bool {
	return s.Host == "" && len(s.Players) == 0 && s.Mode == "" && s.Round == nil
}

func (s State) Clone() State {
	c := s
	c.Players = slices.Clone(s.Players)
	if s.Round != nil {
		r := s.Round.Clone()
		c.Round = &r
	}
	return c
}

func (s State) indexOf(id string) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.ID == id })
}

func (s State) player(id string) (Player, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Player{}, false
	}
	return s.Players[i], true
}

// View is what GetState replies with.
type View struct {
	State    State
	NumPeers int
	Closed   bool
}

// Result is published once per adjudicated round.
type Result struct {
	Mode            string
	WinnerName      string
	LoserName       string
	WinnerCharacter catalog.Character
	LoserCharacter  catalog.Character
	Correct         bool
}
