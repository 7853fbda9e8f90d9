package mod

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxEntry caps a single file read out of a pack.
const maxEntry = 8 << 20

// Load imports a pack from a directory or a .zip archive.
func Load(src string) (Mod, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Mod{}, err
	}
	if info.IsDir() {
		return LoadDir(src)
	}
	if strings.EqualFold(filepath.Ext(src), ".zip") {
		return LoadZip(src)
	}
	return Mod{}, fmt.Errorf("%w: %s is neither a directory nor a .zip", ErrInvalidMod, src)
}

func LoadDir(dir string) (Mod, error) {
	return loadFS(os.DirFS(dir), dir)
}

// LoadZip reads a zipped pack. mod.json may sit at the archive root or inside
// a single top-level folder.
func LoadZip(file string) (Mod, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return Mod{}, fmt.Errorf("%w: %w", ErrInvalidMod, err)
	}
	defer zr.Close()

	root := "."
	if _, err := fs.Stat(zr, DescriptorFile); err != nil {
		root, err = findRoot(zr)
		if err != nil {
			return Mod{}, err
		}
	}
	sub, err := fs.Sub(zr, root)
	if err != nil {
		return Mod{}, fmt.Errorf("%w: %w", ErrInvalidMod, err)
	}
	return loadFS(sub, file)
}

func findRoot(fsys fs.FS) (string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidMod, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := fs.Stat(fsys, path.Join(e.Name(), DescriptorFile)); err == nil {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("%w: no %s found", ErrInvalidMod, DescriptorFile)
}

func loadFS(fsys fs.FS, src string) (Mod, error) {
	read := func(name string) ([]byte, error) { return readLimited(fsys, name) }

	raw, err := read(DescriptorFile)
	if err != nil {
		return Mod{}, fmt.Errorf("%w: %w", ErrInvalidMod, err)
	}
	d, err := ParseDescriptor(raw)
	if err != nil {
		return Mod{}, err
	}
	return build(d, src, read)
}

func readLimited(fsys fs.FS, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxEntry+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxEntry {
		return nil, fmt.Errorf("%s is larger than %d bytes", name, maxEntry)
	}
	return data, nil
}

// Decode reads a self-contained descriptor, as written by Export. Images that
// are not data URIs are rejected since there is no pack to resolve them in.
func Decode(r io.Reader, src string) (Mod, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Mod{}, err
	}
	d, err := ParseDescriptor(raw)
	if err != nil {
		return Mod{}, err
	}
	for _, c := range d.Characters {
		if !strings.HasPrefix(c.Image, "data:") {
			return Mod{}, fmt.Errorf("%w: character %d image is not embedded", ErrInvalidMod, c.ID)
		}
	}
	return Mod{Name: d.Name, Version: d.Version, Path: src, Characters: d.Characters}, nil
}

// Export writes m as a single JSON document with every image embedded.
func Export(w io.Writer, m Mod) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m.Descriptor())
}
