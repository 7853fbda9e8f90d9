package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DoyleJ11/guesswho/internal/mod"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

const (
	modsDir     = "mods"
	profileFile = "profile.json"
)

// Profile is the local player's remembered identity.
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// FileStore keeps saved mods and the profile under a data directory.
type FileStore struct {
	dir string
	log *zap.Logger
}

func NewFileStore(dir string, log *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("storage: empty data dir")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(dir, modsDir), 0o755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// SaveMod writes m as <dir>/mods/<slug>.json, replacing any earlier copy.
func (s *FileStore) SaveMod(m mod.Mod) (string, error) {
	var buf bytes.Buffer
	if err := mod.Export(&buf, m); err != nil {
		return "", err
	}
	file := filepath.Join(s.dir, modsDir, m.Slug()+".json")
	if err := writeAtomic(file, buf.Bytes()); err != nil {
		return "", fmt.Errorf("storage: save mod %q: %w", m.Name, err)
	}
	s.log.Info("mod saved", zap.String("name", m.Name), zap.String("file", file))
	return file, nil
}

// LoadMod reads a saved mod by name or slug.
func (s *FileStore) LoadMod(name string) (mod.Mod, error) {
	file := filepath.Join(s.dir, modsDir, mod.Slug(name)+".json")
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return mod.Mod{}, fmt.Errorf("mod %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return mod.Mod{}, err
	}
	defer f.Close()
	return mod.Decode(f, file)
}

// LoadMods returns every saved mod, sorted by name. Broken files are logged
// and skipped.
func (s *FileStore) LoadMods() ([]mod.Mod, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, modsDir))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	var mods []mod.Mod
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		m, err := s.LoadMod(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			s.log.Warn("skipping saved mod", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })
	return mods, nil
}

func (s *FileStore) SaveProfile(p Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, profileFile), data)
}

// LoadProfile returns ErrNotFound when no profile was saved yet.
func (s *FileStore) LoadProfile() (Profile, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, profileFile))
	if errors.Is(err, fs.ErrNotExist) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("storage: %s: %w", profileFile, err)
	}
	return p, nil
}

func writeAtomic(file string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(file), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), file)
}
