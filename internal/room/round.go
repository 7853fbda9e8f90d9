package room

import (
	"fmt"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/engine"
	"github.com/DoyleJ11/guesswho/internal/protocol"
	"go.uber.org/zap"
)

func (r *Room) startRound(m StartGame) error {
	if r.state.Host == "" || m.ConnID != r.state.Host {
		r.deliver(m.ConnID, protocol.Error{Message: "Only the host can start the game"})
		return ErrNotHost
	}
	if len(r.state.Players) != MaxPlayers {
		r.deliver(m.ConnID, protocol.Error{Message: "Waiting for a second player"})
		return ErrNotEnoughPlayers
	}

	var (
		mode   string
		roster []catalog.Character
	)
	if len(m.Custom) > 0 {
		if err := catalog.ValidateRoster(m.Custom); err != nil {
			r.deliver(m.ConnID, protocol.Error{Message: err.Error()})
			return err
		}
		mode, roster = catalog.ModeCustom, m.Custom
	} else {
		mode, roster = r.catalog.Lookup(m.Mode)
	}

	p1, p2 := r.state.Players[0], r.state.Players[1]
	round, err := engine.Deal(roster, p1.ID, p2.ID, r.rng)
	if err != nil {
		r.deliver(m.ConnID, protocol.Error{Message: err.Error()})
		return err
	}

	r.state.Mode = mode
	r.state.Round = &round

	r.log.Info("round started",
		zap.String("mode", mode),
		zap.Int("roster", len(round.Roster)),
		zap.String("player1", p1.ID),
		zap.String("player2", p2.ID),
	)

	r.deliver(p1.ID, r.gameStartedFor(0))
	r.deliver(p2.ID, r.gameStartedFor(1))
	return nil
}

func (r *Room) submitGuess(m Guess) {
	rd := r.state.Round
	if rd == nil {
		r.log.Debug("stale guess dropped", zap.String("conn", m.ConnID), zap.String("reason", "no round"))
		return
	}
	for _, s := range rd.Seats {
		if r.state.indexOf(s.PlayerID) < 0 {
			r.log.Debug("stale guess dropped", zap.String("conn", m.ConnID), zap.String("reason", "round player gone"))
			return
		}
	}

	out, err := rd.Adjudicate(m.ConnID, m.CharacterID)
	if err != nil {
		r.log.Debug("stale guess dropped", zap.String("conn", m.ConnID), zap.Error(err))
		return
	}
	rd.Winner = out.Winner

	guesser, _ := r.state.player(out.Guesser.PlayerID)
	opponent, _ := r.state.player(out.Opponent.PlayerID)

	r.log.Info("round over",
		zap.String("guesser", guesser.Name),
		zap.Int("guess", out.Guess),
		zap.Bool("correct", out.Correct),
		zap.String("winner", out.Winner),
	)

	if !out.Correct {
		r.deliver(m.ConnID, protocol.GuessWrong{
			Message:     wrongGuessText(rd.Roster, m.CharacterID),
			CharacterID: m.CharacterID,
		})
	}
	r.broadcast(protocol.GameOver{
		Winner:            out.Winner,
		GuesserCharacter:  out.Guesser.Character,
		GuesserName:       guesser.Name,
		OpponentCharacter: out.Opponent.Character,
		OpponentName:      opponent.Name,
	})

	res := Result{Mode: r.state.Mode, Correct: out.Correct}
	if out.Correct {
		res.WinnerName, res.WinnerCharacter = guesser.Name, out.Guesser.Character
		res.LoserName, res.LoserCharacter = opponent.Name, out.Opponent.Character
	} else {
		res.WinnerName, res.WinnerCharacter = opponent.Name, out.Opponent.Character
		res.LoserName, res.LoserCharacter = guesser.Name, out.Guesser.Character
	}
	r.publish(res)
}

func (r *Room) publish(res Result) {
	if r.results == nil {
		return
	}
	select {
	case r.results <- res:
	default:
		r.log.Warn("result dropped, history worker is behind", zap.String("winner", res.WinnerName))
	}
}

func wrongGuessText(roster []catalog.Character, id int) string {
	if ch, ok := catalog.Find(roster, id); ok {
		return fmt.Sprintf("%s is not the right character!", ch.Name)
	}
	return "That is not the right character!"
}
