package engine

import (
	"errors"
	"testing"

	"github.com/DoyleJ11/guesswho/internal/catalog"
)

func roster() []catalog.Character {
	return []catalog.Character{
		{ID: 1, Name: "Alice", Image: "a.png"},
		{ID: 2, Name: "Bob", Image: "b.png"},
		{ID: 3, Name: "Charlie", Image: "c.png"},
		{ID: 4, Name: "Diana", Image: "d.png"},
	}
}

func TestDeal_IndependentDrawsPerSeat(t *testing.T) {
	r, err := Deal(roster(), "p1", "p2", Scripted(2, 0))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.Seats[0].PlayerID != "p1" || r.Seats[0].Character.ID != 3 {
		t.Fatalf("seat 0: got %+v", r.Seats[0])
	}
	if r.Seats[1].PlayerID != "p2" || r.Seats[1].Character.ID != 1 {
		t.Fatalf("seat 1: got %+v", r.Seats[1])
	}
}

func TestDeal_AllowsSameCharacterForBothSeats(t *testing.T) {
	r, err := Deal(roster(), "p1", "p2", Scripted(1, 1))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.Seats[0].Character != r.Seats[1].Character {
		t.Fatalf("want identical draws, got %+v and %+v", r.Seats[0], r.Seats[1])
	}
}

func TestDeal_CopiesRoster(t *testing.T) {
	src := roster()
	r, _ := Deal(src, "p1", "p2", Scripted(0))
	src[0].Name = "changed"
	if r.Roster[0].Name != "Alice" {
		t.Fatalf("round roster aliases caller slice")
	}
}

func TestDeal_Rejects(t *testing.T) {
	if _, err := Deal(nil, "p1", "p2", Scripted(0)); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("want ErrEmptyRoster, got %v", err)
	}
	if _, err := Deal(roster(), "p1", "p1", Scripted(0)); !errors.Is(err, ErrSamePlayer) {
		t.Fatalf("want ErrSamePlayer, got %v", err)
	}
}

func TestDeal_UsesEveryRosterSlot(t *testing.T) {
	rng := NewRand()
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		r, err := Deal(roster(), "p1", "p2", rng)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		seen[r.Seats[0].Character.ID] = true
		seen[r.Seats[1].Character.ID] = true
	}
	if len(seen) != len(roster()) {
		t.Fatalf("expected every character to be drawn at least once, saw %v", seen)
	}
}

func TestAdjudicate(t *testing.T) {
	// p1 holds Charlie (3), p2 holds Alice (1)
	r, _ := Deal(roster(), "p1", "p2", Scripted(2, 0))

	cases := []struct {
		name        string
		guesser     string
		characterID int
		wantCorrect bool
		wantWinner  string
	}{
		{name: "p1 names opponent character", guesser: "p1", characterID: 1, wantCorrect: true, wantWinner: "p1"},
		{name: "p1 names wrong character", guesser: "p1", characterID: 2, wantCorrect: false, wantWinner: "p2"},
		{name: "p1 names own character", guesser: "p1", characterID: 3, wantCorrect: false, wantWinner: "p2"},
		{name: "p2 names opponent character", guesser: "p2", characterID: 3, wantCorrect: true, wantWinner: "p2"},
		{name: "unknown id is just wrong", guesser: "p2", characterID: 999, wantCorrect: false, wantWinner: "p1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Adjudicate(tc.guesser, tc.characterID)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if out.Correct != tc.wantCorrect || out.Winner != tc.wantWinner {
				t.Fatalf("got correct=%v winner=%q, want correct=%v winner=%q",
					out.Correct, out.Winner, tc.wantCorrect, tc.wantWinner)
			}
			if out.Guesser.PlayerID != tc.guesser {
				t.Fatalf("guesser seat: got %q", out.Guesser.PlayerID)
			}
		})
	}
}

func TestAdjudicate_OwnIdWhenBothHoldSameCharacter(t *testing.T) {
	// Both seats drew Bob; naming Bob is then a correct guess of the opponent.
	r, _ := Deal(roster(), "p1", "p2", Scripted(1, 1))
	out, err := r.Adjudicate("p1", 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !out.Correct || out.Winner != "p1" {
		t.Fatalf("got %+v", out)
	}
}

func TestAdjudicate_Rejects(t *testing.T) {
	r, _ := Deal(roster(), "p1", "p2", Scripted(0, 1))

	if _, err := r.Adjudicate("stranger", 1); !errors.Is(err, ErrNotInRound) {
		t.Fatalf("want ErrNotInRound, got %v", err)
	}

	r.Winner = "p1"
	if _, err := r.Adjudicate("p2", 1); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("want ErrRoundOver, got %v", err)
	}
}

func TestRoundLookups(t *testing.T) {
	r, _ := Deal(roster(), "p1", "p2", Scripted(0, 3))

	s, ok := r.SeatOf("p2")
	if !ok || s.Character.ID != 4 {
		t.Fatalf("SeatOf(p2): got %+v ok=%v", s, ok)
	}
	o, ok := r.Opponent("p2")
	if !ok || o.PlayerID != "p1" {
		t.Fatalf("Opponent(p2): got %+v ok=%v", o, ok)
	}

	c := r.Clone()
	c.Roster[0].Name = "changed"
	if r.Roster[0].Name == "changed" {
		t.Fatalf("Clone shares roster")
	}
}
