package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/protocol"
	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var (
	ErrRoomUnreachable = errors.New("room unreachable")
	ErrClosed          = errors.New("connection closed")
	ErrRejected        = errors.New("rejected by host")
)

const (
	eventBuffer = 32
	readLimit   = 8 << 20
)

// Client is the guest side of a room connection.
type Client struct {
	conn   *websocket.Conn
	events chan protocol.ServerMessage
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger

	mu sync.Mutex
	id string

	readDone  chan struct{}
	closeOnce sync.Once
}

// Dial connects to a host. addr may be host:port or an http(s)/ws(s) URL; a
// missing path means /ws.
func Dial(ctx context.Context, addr string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	u, err := WebsocketURL(addr)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.Dial(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRoomUnreachable, u, err)
	}
	conn.SetReadLimit(readLimit)

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:     conn,
		events:   make(chan protocol.ServerMessage, eventBuffer),
		ctx:      cctx,
		cancel:   cancel,
		log:      log,
		readDone: make(chan struct{}),
	}
	go c.readLoop()

	log.Debug("connected", zap.String("url", u))
	return c, nil
}

func WebsocketURL(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: bad address %q", ErrRoomUnreachable, addr)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrRoomUnreachable, u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

func (c *Client) readLoop() {
	defer close(c.readDone)
	defer close(c.events)
	defer c.cancel()
	defer c.conn.CloseNow()

	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				c.log.Debug("host closed the connection")
			default:
				c.log.Debug("connection lost", zap.Error(err))
			}
			return
		}

		msg, err := protocol.DecodeServer(data)
		if err != nil {
			c.log.Warn("ignoring message from host", zap.Error(err))
			continue
		}

		select {
		case c.events <- msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// Join asks for a seat and waits for the host's answer. It must be called
// before anything else reads Events; messages that arrive before the answer
// are consumed.
func (c *Client) Join(ctx context.Context, name, avatar string) (protocol.RoomInfo, error) {
	if err := c.Send(ctx, protocol.JoinRoom{PlayerName: name, PlayerAvatar: avatar}); err != nil {
		return protocol.RoomInfo{}, err
	}

	for {
		select {
		case <-ctx.Done():
			return protocol.RoomInfo{}, ctx.Err()
		case m, ok := <-c.events:
			if !ok {
				return protocol.RoomInfo{}, ErrClosed
			}
			switch m := m.(type) {
			case protocol.RoomInfo:
				c.mu.Lock()
				c.id = m.YourID
				c.mu.Unlock()
				return m, nil
			case protocol.Error:
				return protocol.RoomInfo{}, rejection(m.Message)
			}
		}
	}
}

func rejection(msg string) error {
	switch msg {
	case protocol.MsgRoomFull:
		return room.ErrRoomFull
	case protocol.MsgRoomNotFound:
		return room.ErrRoomClosed
	default:
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
}

// ID is the connection id the host assigned, known after Join.
func (c *Client) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Events is closed when the connection ends.
func (c *Client) Events() <-chan protocol.ServerMessage { return c.events }

func (c *Client) Done() <-chan struct{} { return c.ctx.Done() }

// Send returns ErrClosed once the connection has ended, even if the host
// hung up without the local side noticing a write failure.
func (c *Client) Send(ctx context.Context, m protocol.ClientMessage) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	payload, err := protocol.EncodeClient(m)
	if err != nil {
		return err
	}
	if err := c.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		if c.ctx.Err() != nil {
			return ErrClosed
		}
		return err
	}
	return nil
}

func (c *Client) RequestInfo(ctx context.Context) error {
	return c.Send(ctx, protocol.RoomInfoRequest{})
}

func (c *Client) StartGame(ctx context.Context, mode string, custom []catalog.Character) error {
	return c.Send(ctx, protocol.StartGame{Mode: mode, CustomCharacters: custom})
}

func (c *Client) Guess(ctx context.Context, characterID int) error {
	return c.Send(ctx, protocol.GuessCharacter{CharacterID: characterID})
}

// Leave gives up the seat and closes the connection.
func (c *Client) Leave(ctx context.Context) error {
	err := c.Send(ctx, protocol.LeaveRoom{})
	if errors.Is(err, ErrClosed) {
		err = nil
	}
	return errors.Join(err, c.Close())
}

// Close hangs up. The host treats it like a leave.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		// fails when the host already hung up, which is fine
		if err := c.conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			c.log.Debug("close", zap.Error(err))
		}
		c.cancel()
		<-c.readDone
	})
	return nil
}
