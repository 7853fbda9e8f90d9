package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var ErrInvalidRoster = errors.New("invalid roster")

const (
	ModeClassic = "classic"
	ModeAnimals = "animals"
	ModeCustom  = "custom"
)

type Character struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Catalog maps mode names to rosters. Built-in modes are always present;
// mods loaded at runtime are added with Register.
type Catalog struct {
	mu    sync.RWMutex
	modes map[string][]Character
}

func New() *Catalog {
	c := &Catalog{modes: make(map[string][]Character, len(builtins)+4)}
	for name, roster := range builtins {
		c.modes[name] = roster
	}
	return c
}

// Resolve returns a copy of the roster for mode, falling back to classic
// when the mode is unknown.
func (c *Catalog) Resolve(mode string) []Character {
	_, roster := c.Lookup(mode)
	return roster
}

// Lookup is Resolve that also reports which mode was actually used.
func (c *Catalog) Lookup(mode string) (string, []Character) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name := normalize(mode)
	roster, ok := c.modes[name]
	if !ok {
		name, roster = ModeClassic, c.modes[ModeClassic]
	}
	return name, Clone(roster)
}

func (c *Catalog) Has(mode string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.modes[normalize(mode)]
	return ok
}

func (c *Catalog) Register(mode string, roster []Character) error {
	name := normalize(mode)
	if name == "" || name == ModeCustom {
		return fmt.Errorf("%w: reserved or empty mode name %q", ErrInvalidRoster, mode)
	}
	if _, builtin := builtins[name]; builtin {
		return fmt.Errorf("%w: %q is a built-in mode", ErrInvalidRoster, mode)
	}
	if err := ValidateRoster(roster); err != nil {
		return err
	}

	c.mu.Lock()
	c.modes[name] = Clone(roster)
	c.mu.Unlock()
	return nil
}

func (c *Catalog) Modes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.modes))
	for name := range c.modes {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// ValidateRoster checks the structural shape only: at least one character,
// non-empty names and images, unique ids. Zero is a valid id.
func ValidateRoster(roster []Character) error {
	if len(roster) == 0 {
		return fmt.Errorf("%w: no characters", ErrInvalidRoster)
	}
	seen := make(map[int]struct{}, len(roster))
	for _, ch := range roster {
		if strings.TrimSpace(ch.Name) == "" {
			return fmt.Errorf("%w: character %d has no name", ErrInvalidRoster, ch.ID)
		}
		if strings.TrimSpace(ch.Image) == "" {
			return fmt.Errorf("%w: character %d has no image", ErrInvalidRoster, ch.ID)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("%w: duplicate character id %d", ErrInvalidRoster, ch.ID)
		}
		seen[ch.ID] = struct{}{}
	}
	return nil
}

// DecodeRoster parses a JSON array of characters coming from outside the
// process. Every entry must carry an id; null or empty input yields nil.
func DecodeRoster(data []byte) ([]Character, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []struct {
		ID    *int   `json:"id"`
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoster, err)
	}
	if raw == nil {
		return nil, nil
	}
	out := make([]Character, len(raw))
	for i, r := range raw {
		if r.ID == nil {
			return nil, fmt.Errorf("%w: character %d has no id", ErrInvalidRoster, i+1)
		}
		out[i] = Character{ID: *r.ID, Name: r.Name, Image: r.Image}
	}
	return out, nil
}

func Clone(roster []Character) []Character {
	if roster == nil {
		return nil
	}
	out := make([]Character, len(roster))
	copy(out, roster)
	return out
}

func normalize(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}
