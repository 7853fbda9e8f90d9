package console

import (
	"errors"
	"strings"

	"github.com/DoyleJ11/guesswho/internal/config"
	"github.com/DoyleJ11/guesswho/internal/mod"
	"github.com/DoyleJ11/guesswho/internal/protocol"
	"github.com/DoyleJ11/guesswho/internal/storage"
)

// ResolveProfile merges the command line identity with the saved profile.
// Values given on the command line win and are remembered for next time.
func ResolveProfile(store *storage.FileStore, name, avatarRef string) (storage.Profile, error) {
	saved, err := store.LoadProfile()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.Profile{}, err
	}

	p := saved
	if n := strings.TrimSpace(name); n != "" {
		p.Name = n
	}
	if avatarRef != "" {
		avatar, err := config.ReadAvatar(avatarRef, mod.DataURI)
		if err != nil {
			return storage.Profile{}, err
		}
		p.Avatar = avatar
	}

	if p.Name == "" {
		return storage.Profile{}, errors.New("no player name, pass --name once and it will be remembered")
	}
	if err := protocol.ValidateName(p.Name); err != nil {
		return storage.Profile{}, err
	}
	if len(p.Avatar) > protocol.MaxAvatarBytes {
		return storage.Profile{}, errors.New("avatar image is too large")
	}

	if p != saved {
		if err := store.SaveProfile(p); err != nil {
			return storage.Profile{}, err
		}
	}
	return p, nil
}
