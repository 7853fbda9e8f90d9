package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DoyleJ11/guesswho/internal/catalog"
	"github.com/DoyleJ11/guesswho/internal/config"
	"github.com/DoyleJ11/guesswho/internal/console"
	"github.com/DoyleJ11/guesswho/internal/host"
	"github.com/DoyleJ11/guesswho/internal/logging"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const seatBuffer = 64

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.Host
	if err := newCmd(&cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd(cfg *config.Host) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guesswho-server",
		Short: "Host a two-player Guess Who room and play in it.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyEnv(cmd.Flags()); err != nil {
				return err
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	config.HostFlags(cmd.Flags(), cfg)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func run(ctx context.Context, cfg *config.Host) error {
	newLogger := logging.Interactive
	if cfg.Headless {
		newLogger = logging.New
	}
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := storage.NewFileStore(cfg.DataDir, log.Named("storage"))
	if err != nil {
		return err
	}
	cat := catalog.New()
	registerSavedMods(cat, store, log)

	var profile storage.Profile
	if !cfg.Headless {
		if profile, err = console.ResolveProfile(store, cfg.Name, cfg.Avatar); err != nil {
			return err
		}
	}

	var hist *storage.History
	if cfg.DatabaseURL != "" {
		if hist, err = storage.OpenHistory(cfg.DatabaseURL, log.Named("history")); err != nil {
			return fmt.Errorf("open history: %w", err)
		}
	}

	h, err := host.New(ctx, host.Options{Config: *cfg, Catalog: cat, History: hist, Log: log})
	if err != nil {
		if hist != nil {
			err = multierr.Append(err, hist.Close())
		}
		return err
	}

	fmt.Printf("Guests can join with: guesswho-client --server %s\n", h.JoinURL())
	fmt.Printf("QR code for the address: http://%s/qr\n", h.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.Run(gctx) })

	if !cfg.Headless {
		seat, err := h.Room().Join(gctx, profile.Name, profile.Avatar, seatBuffer)
		if err != nil {
			return multierr.Append(err, h.Teardown(context.Background()))
		}

		g.Go(func() error {
			c := console.New(seat, os.Stdin, os.Stdout, console.Options{Catalog: cat, Store: store, Log: log.Named("console")})
			err := c.Run(gctx)
			if errors.Is(err, console.ErrSeatLost) {
				err = nil
			}
			// the host leaving ends the room for everyone
			return multierr.Append(err, h.Teardown(context.Background()))
		})
	}

	return g.Wait()
}

// registerSavedMods makes every saved mod startable by its slug as a mode.
func registerSavedMods(cat *catalog.Catalog, store *storage.FileStore, log *zap.Logger) {
	mods, err := store.LoadMods()
	if err != nil {
		log.Warn("saved mods unavailable", zap.Error(err))
		return
	}
	for _, m := range mods {
		if err := cat.Register(m.Slug(), m.Characters); err != nil {
			log.Warn("skipping mod", zap.String("mod", m.Name), zap.Error(err))
		}
	}
}
