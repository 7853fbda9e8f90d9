package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "GUESSWHO"

type Host struct {
	Bind         string
	Port         int
	PublicURL    string
	DataDir      string
	DatabaseURL  string
	Name         string
	Avatar       string
	Headless     bool
	MessageRate  float64
	MessageBurst int
	Verbose      bool
}

func (c *Host) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 0-65535 inclusive): %d", c.Port)
	}
	if c.MessageRate <= 0 {
		return fmt.Errorf("invalid message rate (must be positive): %v", c.MessageRate)
	}
	if c.MessageBurst < 1 {
		return fmt.Errorf("invalid message burst (must be at least 1): %d", c.MessageBurst)
	}
	if c.PublicURL != "" {
		if _, err := url.ParseRequestURI(c.PublicURL); err != nil {
			return fmt.Errorf("invalid public url %q: %w", c.PublicURL, err)
		}
	}
	if c.DataDir == "" {
		return errors.New("--data-dir must not be empty")
	}
	return nil
}

func (c *Host) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// JoinURL is the address a guest should dial. port is the port actually
// bound, which differs from c.Port when c.Port is 0.
func (c *Host) JoinURL(port int) string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	host := c.Bind
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = lanIP()
	}
	return "ws://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/ws"
}

type Guest struct {
	Server  string
	Name    string
	Avatar  string
	DataDir string
	Verbose bool
}

func (c *Guest) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("--server is required")
	}
	if c.DataDir == "" {
		return errors.New("--data-dir must not be empty")
	}
	return nil
}

func HostFlags(fs *pflag.FlagSet, c *Host) {
	normalize(fs)
	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSWHO_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 3000, "port to listen on, 0 picks a free one (env: GUESSWHO_PORT)")
	fs.StringVar(&c.PublicURL, "public-url", "", "address guests should dial, if not ws://<lan-ip>:<port>/ws (env: GUESSWHO_PUBLIC_URL)")
	fs.StringVar(&c.DataDir, "data-dir", DefaultDataDir(), "directory for saved mods and the profile (env: GUESSWHO_DATA_DIR)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "postgres dsn for round history, disabled when empty (env: GUESSWHO_DATABASE_URL)")
	fs.StringVarP(&c.Name, "name", "n", "", "player name, defaults to the saved profile (env: GUESSWHO_NAME)")
	fs.StringVar(&c.Avatar, "avatar", "", "avatar image file or data uri (env: GUESSWHO_AVATAR)")
	fs.BoolVar(&c.Headless, "headless", false, "serve the room without a local player (env: GUESSWHO_HEADLESS)")
	fs.Float64Var(&c.MessageRate, "message-rate", 20, "inbound messages per second allowed per connection (env: GUESSWHO_MESSAGE_RATE)")
	fs.IntVar(&c.MessageBurst, "message-burst", 40, "inbound message burst allowed per connection (env: GUESSWHO_MESSAGE_BURST)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "display additional output (env: GUESSWHO_VERBOSE)")
}

func GuestFlags(fs *pflag.FlagSet, c *Guest) {
	normalize(fs)
	fs.StringVarP(&c.Server, "server", "s", "", "host address, host:port or ws:// url (env: GUESSWHO_SERVER)")
	fs.StringVarP(&c.Name, "name", "n", "", "player name, defaults to the saved profile (env: GUESSWHO_NAME)")
	fs.StringVar(&c.Avatar, "avatar", "", "avatar image file or data uri (env: GUESSWHO_AVATAR)")
	fs.StringVar(&c.DataDir, "data-dir", DefaultDataDir(), "directory for saved mods and the profile (env: GUESSWHO_DATA_DIR)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "display additional output (env: GUESSWHO_VERBOSE)")
}

func normalize(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// ApplyEnv fills every flag not set on the command line from the
// environment. A .env file in the working directory is loaded first; real
// environment variables win over it.
func ApplyEnv(fs *pflag.FlagSet) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("env for --%s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "guesswho")
	}
	return ".guesswho"
}

// ReadAvatar turns the --avatar value into something that can go on the
// wire: data URIs and http(s) URLs pass through, anything else is read as
// a file.
func ReadAvatar(ref string, encode func(name string, data []byte) string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "data:"), strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref, nil
	}
	data, err := os.ReadFile(ref)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("avatar %s: %w", ref, err)
	}
	if err != nil {
		return "", err
	}
	return encode(filepath.Base(ref), data), nil
}

func lanIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
