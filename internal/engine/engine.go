package engine

import (
	"errors"

	"github.com/DoyleJ11/guesswho/internal/catalog"
)

var ErrEmptyRoster = errors.New("empty roster")
var ErrNotInRound = errors.New("player is not seated in this round")
var ErrRoundOver = errors.New("round already over")
var ErrSamePlayer = errors.New("both seats belong to the same player")

// Picker is the only thing Deal needs from a random source.
// *rand.Rand from math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

type Seat struct {
	PlayerID  string
	Character catalog.Character
}

type Round struct {
	Roster []catalog.Character
	Seats  [2]Seat
	Winner string
}

type Outcome struct {
	Correct  bool
	Winner   string
	Guess    int
	Guesser  Seat
	Opponent Seat
}

// Deal draws one character per seat, independently and uniformly. Both seats
// may end up with the same character.
func Deal(roster []catalog.Character, player1, player2 string, rng Picker) (Round, error) {
	if len(roster) == 0 {
		return Round{}, ErrEmptyRoster
	}
	if player1 == player2 {
		return Round{}, ErrSamePlayer
	}

	r := Round{Roster: catalog.Clone(roster)}
	r.Seats[0] = Seat{PlayerID: player1, Character: r.Roster[rng.IntN(len(r.Roster))]}
	r.Seats[1] = Seat{PlayerID: player2, Character: r.Roster[rng.IntN(len(r.Roster))]}
	return r, nil
}

// Adjudicate resolves a single guess. A wrong guess hands the win to the
// opponent; there is no second attempt.
func (r Round) Adjudicate(guesserID string, characterID int) (Outcome, error) {
	if r.Over() {
		return Outcome{}, ErrRoundOver
	}

	guesser, opponent, ok := r.split(guesserID)
	if !ok {
		return Outcome{}, ErrNotInRound
	}

	out := Outcome{
		Correct:  characterID == opponent.Character.ID,
		Guess:    characterID,
		Guesser:  guesser,
		Opponent: opponent,
	}
	if out.Correct {
		out.Winner = guesser.PlayerID
	} else {
		out.Winner = opponent.PlayerID
	}
	return out, nil
}

func (r Round) Over() bool { return r.Winner != "" }

// SeatOf returns the seat belonging to playerID.
func (r Round) SeatOf(playerID string) (Seat, bool) {
	s, _, ok := r.split(playerID)
	return s, ok
}

func (r Round) Opponent(playerID string) (Seat, bool) {
	_, o, ok := r.split(playerID)
	return o, ok
}

func (r Round) Clone() Round {
	c := r
	c.Roster = catalog.Clone(r.Roster)
	return c
}

func (r Round) split(playerID string) (Seat, Seat, bool) {
	switch playerID {
	case r.Seats[0].PlayerID:
		return r.Seats[0], r.Seats[1], true
	case r.Seats[1].PlayerID:
		return r.Seats[1], r.Seats[0], true
	default:
		return Seat{}, Seat{}, false
	}
}
