package host

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/config"
	"github.com/DoyleJ11/guesswho/internal/engine"
	"github.com/DoyleJ11/guesswho/internal/httpapi"
	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"github.com/DoyleJ11/guesswho/internal/ws"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	resultBuffer    = 16
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	Config  config.Host
	Catalog *catalog.Catalog
	History *storage.History // optional
	Picker  engine.Picker    // optional, for tests
	Log     *zap.Logger
}

// Host is the process side of a room: the room itself plus the listener
// guests connect to.
type Host struct {
	cfg     config.Host
	room    *room.Room
	ln      net.Listener
	srv     *http.Server
	history *storage.History
	results chan room.Result
	log     *zap.Logger

	done     chan struct{}
	once     sync.Once
	closeErr error
}

// New binds the listener right away so the join address is known before
// Run is called.
func New(ctx context.Context, opts Options) (*Host, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	ln, err := net.Listen("tcp", opts.Config.Addr())
	if err != nil {
		return nil, err
	}

	h := &Host{
		cfg:     opts.Config,
		ln:      ln,
		history: opts.History,
		log:     log,
		done:    make(chan struct{}),
	}

	roomOpts := []room.Option{room.WithLogger(log.Named("room"))}
	if opts.Catalog != nil {
		roomOpts = append(roomOpts, room.WithCatalog(opts.Catalog))
	}
	if opts.Picker != nil {
		roomOpts = append(roomOpts, room.WithPicker(opts.Picker))
	}
	if h.history != nil {
		h.results = make(chan room.Result, resultBuffer)
		roomOpts = append(roomOpts, room.WithResults(h.results))
	}
	h.room = room.New(ctx, roomOpts...)

	deps := httpapi.Deps{
		Room: h.room,
		WS: ws.Options{
			Log:          log.Named("ws"),
			MessageRate:  opts.Config.MessageRate,
			MessageBurst: opts.Config.MessageBurst,
		},
		JoinURL: h.JoinURL,
		Log:     log.Named("http"),
	}
	if h.history != nil {
		deps.History = h.history
	}
	h.srv = &http.Server{
		Handler:           httpapi.SetupRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return h, nil
}

func (h *Host) Room() *room.Room { return h.room }

func (h *Host) Addr() net.Addr { return h.ln.Addr() }

func (h *Host) Port() int {
	if a, ok := h.ln.Addr().(*net.TCPAddr); ok {
		return a.Port
	}
	return h.cfg.Port
}

func (h *Host) JoinURL() string { return h.cfg.JoinURL(h.Port()) }

// Done is closed once Teardown has started.
func (h *Host) Done() <-chan struct{} { return h.done }

// Run serves until ctx is cancelled or Teardown is called, then tears the
// host down.
func (h *Host) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.log.Info("listening", zap.String("addr", h.ln.Addr().String()), zap.String("join", h.JoinURL()))
		if err := h.srv.Serve(h.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if h.history != nil {
		g.Go(func() error { return h.history.Drain(gctx, h.results) })
	}

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-h.done:
			cancel()
		}
		sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer scancel()
		return h.Teardown(sctx)
	})

	return g.Wait()
}

// Teardown closes the room, kicks every guest and stops the listener. Only
// the first call does anything; later calls return the same error.
func (h *Host) Teardown(ctx context.Context) error {
	h.once.Do(func() {
		close(h.done)
		h.log.Info("tearing down")

		var err error
		err = multierr.Append(err, h.room.Teardown(ctx))
		if serr := h.srv.Shutdown(ctx); serr != nil && !errors.Is(serr, net.ErrClosed) {
			err = multierr.Append(err, serr)
		}
		if lerr := h.ln.Close(); lerr != nil && !errors.Is(lerr, net.ErrClosed) {
			err = multierr.Append(err, lerr)
		}
		h.room.Close()
		if h.history != nil {
			err = multierr.Append(err, h.history.Close())
		}
		h.closeErr = err
	})
	return h.closeErr
}
