package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

// Config is the root configuration for timetrack, stored in
// ~/.timetrack/config.yaml.
type Config struct {
	Google    Google    `koanf:"google"`
	Calendars Calendars `koanf:"calendars"`
	ICS       Calendars `koanf:"ics"`
	// Marker is the summary prefix that opts an event into tracking.
	Marker string `koanf:"marker"`
	// TokenFile stores the Google OAuth2 token between runs.
	TokenFile string `koanf:"tokenfile"`
	// DataDir holds the raw record cache written by `timetrack sync`.
	DataDir string `koanf:"datadir"`
}

// Google holds the OAuth2 client of an "installed application".
type Google struct {
	ClientID     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	ProjectID    string `koanf:"projectid"`
	AuthURL      string `koanf:"authurl"`
	TokenURL     string `koanf:"tokenurl"`
	// RedirectURL overrides the loopback address the login flow listens on.
	RedirectURL string `koanf:"redirecturl"`
}

// Calendars lists calendar sources per kind. For the Google section these
// are calendar IDs, for the ICS section URLs or file paths.
type Calendars struct {
	Working []string `koanf:"working"`
	Tracked []string `koanf:"tracked"`
}

const (
	// EnvPrefix prefixes environment overrides, e.g. TIMETRACK_MARKER.
	EnvPrefix = "TIMETRACK_"

	DefaultMarker   = "#"
	DefaultAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
)

// legacyEnv maps the environment variables understood by earlier versions of
// the tool onto config keys.
var legacyEnv = map[string]string{
	"GOOGLE_CLIENT_ID":     "google.clientid",
	"GOOGLE_CLIENT_SECRET": "google.clientsecret",
	"GOOGLE_PROJECT_ID":    "google.projectid",
	"GOOGLE_AUTH_URL":      "google.authurl",
	"GOOGLE_TOKEN_URI":     "google.tokenurl",
	"GOOGLE_REDIRECT_URI":  "google.redirecturl",
	"CALENDAR_WORKTIME":    "calendars.working",
	"CALENDAR_TRACK":       "calendars.tracked",
	"TOKEN_FILE":           "tokenfile",
}

// Dir returns the path to ~/.timetrack.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timetrack"), nil
}

// DefaultPath returns the path to ~/.timetrack/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaultConfig(dir string) Config {
	return Config{
		Google: Google{
			AuthURL:  DefaultAuthURL,
			TokenURL: DefaultTokenURL,
		},
		Calendars: Calendars{Working: []string{}, Tracked: []string{}},
		ICS:       Calendars{Working: []string{}, Tracked: []string{}},
		Marker:    DefaultMarker,
		TokenFile: filepath.Join(dir, "token.json"),
		DataDir:   filepath.Join(dir, "data"),
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# timetrack configuration - ~/.timetrack/config.yaml
#
# Every key can be overridden by an environment variable, e.g.
#   TIMETRACK_GOOGLE_CLIENTID, TIMETRACK_CALENDARS_TRACKED=a@group,b@group
google:
  # OAuth2 client of type "Desktop app" from the Google Cloud console.
  clientid: ""
  clientsecret: ""

calendars:
  # Google calendar IDs holding the time you are expected to work.
  working: []
  # Google calendar IDs holding the time you actually worked.
  tracked: []

ics:
  # iCalendar URLs or file paths, same meaning as above.
  working: []
  tracked: []

# Only events whose title starts with this marker are counted.
marker: "#"
`

// Load reads the config file at path, layered on top of the built-in
// defaults and below environment overrides. A missing file is created with
// the annotated template and the defaults are used.
func Load(path string) (Config, error) {
	dir := filepath.Dir(path)
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(dir), "koanf"), nil); err != nil {
		log.Errorf("error loading config defaults: %v", err)
		return Config{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		log.Debugf("config file not found at %s, using defaults and environment variables", path)
		if writeErr := writeDefault(path); writeErr != nil {
			log.Warnf("could not create config file %s: %v", path, writeErr)
		}
	} else {
		log.Debugf("loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			key, ok := legacyEnv[k]
			if !ok {
				return "", nil
			}
			return key, envValue(key, v)
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading legacy environment: %w", err)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".")
			return key, envValue(key, v)
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// envValue splits comma separated calendar lists.
func envValue(key, v string) any {
	if !strings.HasSuffix(key, ".working") && !strings.HasSuffix(key, ".tracked") {
		return v
	}
	if strings.TrimSpace(v) == "" {
		return []string{}
	}
	parts := strings.Split(v, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
