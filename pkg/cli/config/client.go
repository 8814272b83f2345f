package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/domain/interfaces"
	"github.com/hrops-lab/schedctl/pkg/repository/file"
	"github.com/hrops-lab/schedctl/pkg/repository/memory"
	"github.com/hrops-lab/schedctl/pkg/service/scheduler"
	"github.com/hrops-lab/schedctl/pkg/utils/logging"
)

// Client holds CLI flags for scheduler backend access and session storage
type Client struct {
	apiURL       string
	wsURL        string
	sessionPath  string
	backend      string
	callbackAddr string
	profile      string
}

// profileFile is the optional TOML profile. Flag and environment values take
// precedence over profile values.
type profileFile struct {
	APIURL       string `toml:"api_url"`
	WSURL        string `toml:"ws_url"`
	SessionPath  string `toml:"session_path"`
	CallbackAddr string `toml:"callback_addr"`
}

// Flags returns CLI flags for client configuration
func (c *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-url",
			Usage:       "Scheduler backend base URL",
			Value:       "http://localhost:8000",
			Sources:     cli.EnvVars("SCHEDCTL_API_URL"),
			Destination: &c.apiURL,
		},
		&cli.StringFlag{
			Name:        "ws-url",
			Usage:       "WebSocket base URL (derived from --api-url when empty)",
			Sources:     cli.EnvVars("SCHEDCTL_WS_URL"),
			Destination: &c.wsURL,
		},
		&cli.StringFlag{
			Name:        "session-file",
			Usage:       "Session storage path (defaults to the user config dir)",
			Sources:     cli.EnvVars("SCHEDCTL_SESSION_FILE"),
			Destination: &c.sessionPath,
		},
		&cli.StringFlag{
			Name:        "session-backend",
			Usage:       "Session storage backend (file or memory)",
			Value:       "file",
			Sources:     cli.EnvVars("SCHEDCTL_SESSION_BACKEND"),
			Destination: &c.backend,
		},
		&cli.StringFlag{
			Name:        "callback-addr",
			Usage:       "Local listener address for OAuth redirects",
			Value:       "127.0.0.1:8910",
			Sources:     cli.EnvVars("SCHEDCTL_CALLBACK_ADDR"),
			Destination: &c.callbackAddr,
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to a TOML profile with connection settings",
			Sources:     cli.EnvVars("SCHEDCTL_PROFILE"),
			Destination: &c.profile,
		},
	}
}

// Configure builds the API client and session store from the flags
func (c *Client) Configure(ctx context.Context) (*scheduler.Client, interfaces.SessionStore, error) {
	if err := c.applyProfile(); err != nil {
		return nil, nil, err
	}

	api, err := scheduler.New(c.apiURL)
	if err != nil {
		return nil, nil, err
	}

	store, err := c.sessionStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return api, store, nil
}

func (c *Client) applyProfile() error {
	if c.profile == "" {
		return nil
	}
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(c.profile)
	if err != nil {
		return goerr.Wrap(err, "failed to read profile", goerr.V("path", c.profile))
	}
	var p profileFile
	if err := toml.Unmarshal(data, &p); err != nil {
		return goerr.Wrap(err, "failed to parse TOML profile", goerr.V("path", c.profile))
	}

	if p.APIURL != "" {
		c.apiURL = p.APIURL
	}
	if p.WSURL != "" {
		c.wsURL = p.WSURL
	}
	if p.SessionPath != "" {
		c.sessionPath = p.SessionPath
	}
	if p.CallbackAddr != "" {
		c.callbackAddr = p.CallbackAddr
	}
	return nil
}

func (c *Client) sessionStore(ctx context.Context) (interfaces.SessionStore, error) {
	switch c.backend {
	case "file":
		path := c.sessionPath
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return nil, goerr.Wrap(err, "failed to resolve user config dir")
			}
			path = filepath.Join(dir, "schedctl", "session.json")
		}
		store, err := file.New(path)
		if err != nil {
			return nil, err
		}
		logging.From(ctx).Debug("using file session store", "path", path)
		return store, nil

	case "memory":
		logging.From(ctx).Debug("using in-memory session store")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid session backend", goerr.V("backend", c.backend))
	}
}

// WSBaseURL returns the WebSocket base URL, derived from the API URL when no
// explicit value was given.
func (c *Client) WSBaseURL() string {
	if c.wsURL != "" {
		return c.wsURL
	}
	switch {
	case strings.HasPrefix(c.apiURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.apiURL, "https://")
	case strings.HasPrefix(c.apiURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.apiURL, "http://")
	}
	return c.apiURL
}

// CallbackAddr returns the local OAuth redirect listener address
func (c *Client) CallbackAddr() string {
	return c.callbackAddr
}

// LogValue reports the connection settings for startup logging
func (c Client) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api_url", c.apiURL),
		slog.String("ws_url", c.WSBaseURL()),
		slog.String("session_backend", c.backend),
	)
}
