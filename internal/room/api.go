package room

import (
	"context"
	"errors"

	"github.com/DoyleJ11/guesswho/internal/catalog"
)

// The helpers below wrap the inbox for callers that want a blocking,
// context-aware API. They fail with ErrStopped once the room is closed.

func (r *Room) post(ctx context.Context, m Msg) error {
	select {
	case r.inbox <- m:
		return nil
	case <-r.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, r *Room, ch chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-r.ctx.Done():
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *Room) Admit(ctx context.Context, p Peer, name, avatar string) error {
	reply := make(chan error, 1)
	if err := r.post(ctx, Admit{Peer: p, Name: name, Avatar: avatar, Reply: reply}); err != nil {
		return err
	}
	err, werr := await(ctx, r, reply)
	if werr != nil {
		return werr
	}
	return err
}

func (r *Room) Remove(ctx context.Context, connID string) error {
	return r.post(ctx, Remove{ConnID: connID})
}

func (r *Room) RequestInfo(ctx context.Context, p Peer) error {
	return r.post(ctx, RequestInfo{Peer: p})
}

func (r *Room) StartGame(ctx context.Context, connID, mode string, custom []catalog.Character) error {
	reply := make(chan error, 1)
	msg := StartGame{ConnID: connID, Mode: mode, Custom: custom, Reply: reply}
	if err := r.post(ctx, msg); err != nil {
		return err
	}
	err, werr := await(ctx, r, reply)
	if werr != nil {
		return werr
	}
	return err
}

func (r *Room) Guess(ctx context.Context, connID string, characterID int) error {
	return r.post(ctx, Guess{ConnID: connID, CharacterID: characterID})
}

// State returns a copy of the current room state.
func (r *Room) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := r.post(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	return await(ctx, r, reply)
}

// Teardown clears the room and refuses further admissions. It returns once
// the room has processed the request.
func (r *Room) Teardown(ctx context.Context) error {
	done := make(chan struct{})
	if err := r.post(ctx, Teardown{Done: done}); err != nil {
		if errors.Is(err, ErrStopped) {
			return nil
		}
		return err
	}
	_, err := await(ctx, r, done)
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}
