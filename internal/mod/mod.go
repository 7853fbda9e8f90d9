package mod

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/DoyleJ11/guesswho/internal/catalog"
)

// DescriptorFile is the name of the manifest at the root of every pack.
const DescriptorFile = "mod.json"

var ErrInvalidMod = errors.New("invalid mod")

// Descriptor is the on-disk manifest of a pack.
type Descriptor struct {
	Name       string              `json:"name"`
	Version    string              `json:"version,omitempty"`
	Characters []catalog.Character `json:"characters"`
}

// Mod is a loaded pack. Every character image is a data URI.
type Mod struct {
	Name       string
	Version    string
	Path       string
	Characters []catalog.Character
}

// Slug is the file-system friendly form of the mod name.
func (m Mod) Slug() string { return Slug(m.Name) }

// Descriptor returns the self-contained manifest for m.
func (m Mod) Descriptor() Descriptor {
	return Descriptor{Name: m.Name, Version: m.Version, Characters: catalog.Clone(m.Characters)}
}

// Validate checks the shape of a descriptor. It does not look at images.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidMod)
	}
	if err := catalog.ValidateRoster(d.Characters); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMod, err)
	}
	return nil
}

func ParseDescriptor(data []byte) (Descriptor, error) {
	var raw struct {
		Name       string          `json:"name"`
		Version    string          `json:"version"`
		Characters json.RawMessage `json:"characters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %s: %w", ErrInvalidMod, DescriptorFile, err)
	}
	chars, err := catalog.DecodeRoster(raw.Characters)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %s: %w", ErrInvalidMod, DescriptorFile, err)
	}
	d := Descriptor{Name: strings.TrimSpace(raw.Name), Version: raw.Version, Characters: chars}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "mod"
	}
	return s
}

// readFunc reads a file relative to the pack root.
type readFunc func(name string) ([]byte, error)

// build resolves every image of d through read and returns the loaded mod.
func build(d Descriptor, src string, read readFunc) (Mod, error) {
	chars := catalog.Clone(d.Characters)
	for i := range chars {
		uri, err := resolveImage(chars[i].Image, read)
		if err != nil {
			return Mod{}, fmt.Errorf("%w: character %d (%s): %w", ErrInvalidMod, chars[i].ID, chars[i].Name, err)
		}
		chars[i].Image = uri
	}
	return Mod{Name: d.Name, Version: d.Version, Path: src, Characters: chars}, nil
}

func resolveImage(ref string, read readFunc) (string, error) {
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	name, err := cleanRel(ref)
	if err != nil {
		return "", err
	}
	data, err := read(name)
	if err != nil {
		return "", err
	}
	return DataURI(name, data), nil
}

// cleanRel turns an image reference into a slash path inside the pack.
func cleanRel(ref string) (string, error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "\\", "/")
	if ref == "" {
		return "", errors.New("empty image path")
	}
	if strings.HasPrefix(ref, "/") || strings.Contains(ref, ":") {
		return "", fmt.Errorf("image %q must be relative to the pack", ref)
	}
	clean := path.Clean(ref)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("image %q escapes the pack", ref)
	}
	return clean, nil
}

// DataURI encodes data as a base64 data URI, typed by extension and falling
// back to content sniffing.
func DataURI(name string, data []byte) string {
	ct := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data)
}
