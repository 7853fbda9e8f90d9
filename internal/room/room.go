package room

import (
	"context"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/engine"
	"github.com/DoyleJ11/guesswho/internal/protocol"
	"go.uber.org/zap"
)

type Msg interface{ isRoomMsg() }

// Peer is a connection as the room sees it: somewhere to deliver messages and
// a way to hang up on it.
type Peer struct {
	ConnID string
	Out    chan<- protocol.ServerMessage
	Kick   func()
}

type Admit struct {
	Peer   Peer
	Name   string
	Avatar string
	Reply  chan<- error // optional
}

func (Admit) isRoomMsg() {}

// Remove covers both an explicit leave and a dropped transport.
type Remove struct{ ConnID string }

func (Remove) isRoomMsg() {}

// RequestInfo asks for a room-info message to be delivered to Peer, which
// does not need to be seated.
type RequestInfo struct{ Peer Peer }

func (RequestInfo) isRoomMsg() {}

type StartGame struct {
	ConnID string
	Mode   string
	Custom []catalog.Character
	Reply  chan<- error // optional
}

func (StartGame) isRoomMsg() {}

type Guess struct {
	ConnID      string
	CharacterID int
}

func (Guess) isRoomMsg() {}

type GetState struct {
	Reply chan<- View
}

func (GetState) isRoomMsg() {}

type Teardown struct {
	Done chan<- struct{} // optional
}

func (Teardown) isRoomMsg() {}

type Room struct {
	inbox   chan Msg
	state   State
	peers   map[string]Peer
	closed  bool
	evict   []string
	catalog *catalog.Catalog
	rng     engine.Picker
	results chan<- Result
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

type Option func(*Room)

func WithLogger(l *zap.Logger) Option { return func(r *Room) { r.log = l } }

func WithCatalog(c *catalog.Catalog) Option { return func(r *Room) { r.catalog = c } }

func WithPicker(p engine.Picker) Option { return func(r *Room) { r.rng = p } }

// WithResults makes the room publish every finished round on ch. Sends never
// block; results are dropped when ch is full.
func WithResults(ch chan<- Result) Option { return func(r *Room) { r.results = ch } }

func New(parent context.Context, opts ...Option) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:  make(chan Msg, 64),
		peers:  make(map[string]Peer),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.catalog == nil {
		r.catalog = catalog.New()
	}
	if r.rng == nil {
		r.rng = engine.NewRand()
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Admit:
				err := r.admit(msg)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case Remove:
				r.remove(msg.ConnID)

			case RequestInfo:
				r.send(msg.Peer, r.roomInfoFor(msg.Peer.ConnID))

			case StartGame:
				err := r.startRound(msg)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case Guess:
				r.submitGuess(msg)

			case GetState:
				msg.Reply <- View{
					State:    r.state.Clone(),
					NumPeers: len(r.peers),
					Closed:   r.closed,
				}

			case Teardown:
				r.teardown()
				if msg.Done != nil {
					close(msg.Done)
				}
			}
			r.flushEvictions()
		}
	}
}

func (r *Room) shutdown() {
	for id, p := range r.peers {
		if p.Kick != nil {
			p.Kick()
		}
		delete(r.peers, id)
	}
	r.state = State{}
}

func (r *Room) teardown() {
	if !r.closed {
		r.log.Info("room torn down", zap.Int("players", len(r.state.Players)))
	}
	r.closed = true
	r.evict = nil
	r.shutdown()
}

// deliver never blocks the loop. A peer whose outbox is full is evicted once
// the current message has been handled.
func (r *Room) deliver(id string, m protocol.ServerMessage) {
	p, ok := r.peers[id]
	if !ok {
		return
	}
	select {
	case p.Out <- m:
	default:
		r.evict = append(r.evict, id)
	}
}

func (r *Room) broadcast(m protocol.ServerMessage) {
	for _, p := range r.state.Players {
		r.deliver(p.ID, m)
	}
}

// send is for peers that may not be seated, e.g. a rejected joiner.
func (r *Room) send(p Peer, m protocol.ServerMessage) {
	if _, seated := r.peers[p.ConnID]; seated {
		r.deliver(p.ConnID, m)
		return
	}
	if p.Out == nil {
		return
	}
	select {
	case p.Out <- m:
	default:
	}
}

func (r *Room) flushEvictions() {
	for len(r.evict) > 0 {
		id := r.evict[0]
		r.evict = r.evict[1:]

		p, ok := r.peers[id]
		if !ok {
			continue
		}
		r.log.Warn("dropping slow peer", zap.String("conn", id))
		if p.Kick != nil {
			p.Kick()
		}
		r.remove(id)
	}
}

// Inbox exposes the raw message channel for callers that want to build
// messages themselves.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed when the room starts shutting down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Close stops the loop. Pending messages are discarded.
func (r *Room) Close() { r.cancel() }
