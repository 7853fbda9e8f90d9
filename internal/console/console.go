package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/mod"
	"github.com/DoyleJ11/guesswho/internal/protocol"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"go.uber.org/zap"
)

// Seat is whatever the local player plays through: a seat in this
// process's room, or a connection to someone else's.
type Seat interface {
	ID() string
	Events() <-chan protocol.ServerMessage
	Done() <-chan struct{}
	RequestInfo(ctx context.Context) error
	StartGame(ctx context.Context, mode string, custom []catalog.Character) error
	Guess(ctx context.Context, characterID int) error
	Leave(ctx context.Context) error
}

var ErrSeatLost = errors.New("disconnected from the room")

type Console struct {
	seat    Seat
	in      io.Reader
	out     io.Writer
	catalog *catalog.Catalog
	store   *storage.FileStore // optional
	log     *zap.Logger

	roster []catalog.Character
	myID   string
}

type Options struct {
	Catalog *catalog.Catalog
	Store   *storage.FileStore
	Log     *zap.Logger
}

func New(seat Seat, in io.Reader, out io.Writer, opts Options) *Console {
	c := &Console{
		seat:    seat,
		in:      in,
		out:     out,
		catalog: opts.Catalog,
		store:   opts.Store,
		log:     opts.Log,
		myID:    seat.ID(),
	}
	if c.catalog == nil {
		c.catalog = catalog.New()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Run prints room events and executes typed commands until the player
// leaves, the input ends, the seat is lost or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()

	c.printf("Type 'help' for commands.\n")
	events := c.seat.Events()
	for {
		select {
		case <-ctx.Done():
			return c.leave()

		case <-c.seat.Done():
			c.drain(events)
			c.printf("Disconnected from the room.\n")
			return ErrSeatLost

		case m, ok := <-events:
			if !ok {
				c.printf("Disconnected from the room.\n")
				return ErrSeatLost
			}
			c.show(m)

		case line, ok := <-lines:
			if !ok {
				return c.leave()
			}
			quit, err := c.exec(ctx, line)
			if err != nil {
				c.printf("error: %v\n", err)
			}
			if quit {
				return c.leave()
			}
		}
	}
}

func (c *Console) leave() error {
	ctx := context.Background()
	if err := c.seat.Leave(ctx); err != nil {
		c.log.Debug("leave", zap.Error(err))
	}
	return nil
}

// drain shows whatever was queued before the seat went away, e.g. the
// rejection that caused it.
func (c *Console) drain(events <-chan protocol.ServerMessage) {
	for {
		select {
		case m, ok := <-events:
			if !ok {
				return
			}
			c.show(m)
		default:
			return
		}
	}
}

func (c *Console) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "help", "?":
		c.help()
	case "info":
		return false, c.seat.RequestInfo(ctx)
	case "modes", "mods":
		c.listModes()
	case "characters", "chars":
		c.listCharacters()
	case "start":
		return false, c.start(ctx, args)
	case "guess":
		if len(args) != 1 {
			return false, errors.New("usage: guess <character id>")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("not a character id: %q", args[0])
		}
		return false, c.seat.Guess(ctx, id)
	case "import":
		return false, c.importMod(args)
	case "leave", "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return false, nil
}

func (c *Console) start(ctx context.Context, args []string) error {
	if len(args) >= 2 && strings.EqualFold(args[0], "mod") {
		if c.store == nil {
			return errors.New("no data directory for saved mods")
		}
		m, err := c.store.LoadMod(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return c.seat.StartGame(ctx, m.Slug(), m.Characters)
	}

	mode := catalog.ModeClassic
	if len(args) > 0 {
		mode = args[0]
	}
	if !c.catalog.Has(mode) {
		c.printf("Unknown mode %q, the host will fall back to %s.\n", mode, catalog.ModeClassic)
	}
	return c.seat.StartGame(ctx, mode, nil)
}

func (c *Console) importMod(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: import <directory or .zip>")
	}
	if c.store == nil {
		return errors.New("no data directory for saved mods")
	}
	m, err := mod.Load(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if _, err := c.store.SaveMod(m); err != nil {
		return err
	}
	c.printf("Imported %q (%d characters). Start it with: start mod %s\n", m.Name, len(m.Characters), m.Slug())
	return nil
}

func (c *Console) listModes() {
	c.printf("Modes: %s\n", strings.Join(c.catalog.Modes(), ", "))
	if c.store == nil {
		return
	}
	mods, err := c.store.LoadMods()
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	for _, m := range mods {
		c.printf("  mod %-20s %d characters (start mod %s)\n", m.Name, len(m.Characters), m.Slug())
	}
}

func (c *Console) listCharacters() {
	if len(c.roster) == 0 {
		c.printf("No round in progress.\n")
		return
	}
	for _, ch := range c.roster {
		c.printf("  %3d  %s\n", ch.ID, ch.Name)
	}
}

func (c *Console) help() {
	c.printf(`Commands:
  info                 show the room
  start [mode]         start a round (host only), default classic
  start mod <name>     start a round with a saved mod
  modes                list modes and saved mods
  import <path>        import a mod directory or .zip
  characters           list this round's characters
  guess <id>           guess the opponent's character
  leave                leave the room
`)
}

func (c *Console) show(m protocol.ServerMessage) {
	switch m := m.(type) {
	case protocol.PlayerJoined:
		c.printf("Players: %s\n", c.names(m.Players))
	case protocol.PlayerLeft:
		c.printf("A player left. Players: %s\n", c.names(m.Players))
	case protocol.RoomInfo:
		if m.YourID != "" {
			c.myID = m.YourID
		}
		mode := m.Mode
		if mode == "" {
			mode = "-"
		}
		c.printf("Room: %d/2 players (%s), mode %s\n", len(m.Players), c.names(m.Players), mode)
		if gs := m.GameState; gs != nil {
			c.roster = gs.Characters
			if gs.YourCharacter != nil {
				c.printf("Your character: %s (#%d)\n", gs.YourCharacter.Name, gs.YourCharacter.ID)
			}
			if gs.Winner != "" {
				c.printf("Last round won by %s\n", c.who(gs.Winner))
			}
		}
	case protocol.GameStarted:
		c.roster = m.Characters
		c.myID = m.YourID
		c.printf("Round started against %s. Your character is %s (#%d).\n", m.Opponent.Name, m.YourCharacter.Name, m.YourCharacter.ID)
		c.listCharacters()
	case protocol.GuessWrong:
		c.printf("%s\n", m.Message)
	case protocol.GameOver:
		if m.Winner == c.myID {
			c.printf("You win! ")
		} else {
			c.printf("You lose. ")
		}
		c.printf("%s had %s, %s had %s.\n",
			m.GuesserName, m.GuesserCharacter.Name, m.OpponentName, m.OpponentCharacter.Name)
	case protocol.Error:
		c.printf("host: %s\n", m.Message)
	}
}

func (c *Console) names(ps []protocol.Player) string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		name := p.Name
		if p.ID == c.myID {
			name += " (you)"
		}
		out = append(out, name)
	}
	return strings.Join(out, ", ")
}

func (c *Console) who(id string) string {
	if id == c.myID {
		return "you"
	}
	return "your opponent"
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
