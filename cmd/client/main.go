package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/guesswho/internal/client"
	"github.com/DoyleJ11/guesswho/internal/config"
	"github.com/DoyleJ11/guesswho/internal/console"
	"github.com/DoyleJ11/guesswho/internal/logging"
	"github.com/DoyleJ11/guesswho/internal/room"
	"github.com/DoyleJ11/guesswho/internal/storage"
	"github.com/spf13/cobra"
)

const dialTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.Guest
	if err := newCmd(&cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd(cfg *config.Guest) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guesswho-client",
		Short: "Join someone's Guess Who room.",
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
	config.GuestFlags(cmd.Flags(), cfg)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func run(ctx context.Context, cfg *config.Guest) error {
	log, err := logging.Interactive(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := storage.NewFileStore(cfg.DataDir, log.Named("storage"))
	if err != nil {
		return err
	}
	profile, err := console.ResolveProfile(store, cfg.Name, cfg.Avatar)
	if err != nil {
		return err
	}

	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	c, err := client.Dial(dctx, cfg.Server, log.Named("client"))
	if err != nil {
		return err
	}
	defer c.Close()

	info, err := c.Join(dctx, profile.Name, profile.Avatar)
	switch {
	case errors.Is(err, room.ErrRoomFull):
		return errors.New("the room is full")
	case errors.Is(err, room.ErrRoomClosed):
		return errors.New("the room no longer exists")
	case err != nil:
		return err
	}

	host := "the host"
	for _, p := range info.Players {
		if p.ID == info.Host {
			host = p.Name
		}
	}
	fmt.Printf("Joined %s's room. Waiting for the host to start a round.\n", host)

	err = console.New(c, os.Stdin, os.Stdout, console.Options{Store: store, Log: log.Named("console")}).Run(ctx)
	if errors.Is(err, console.ErrSeatLost) {
		return errors.New("the host ended the session")
	}
	return err
}
