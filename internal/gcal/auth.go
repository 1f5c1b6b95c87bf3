package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/Tiliavir/timetrack/internal/config"
)

// ErrUnauthenticated is returned when no usable Google credentials exist.
var ErrUnauthenticated = errors.New("google calendar: not authenticated")

var requiredScopes = []string{calendar.CalendarReadonlyScope}

// oauth2Config returns the oauth2.Config for an installed application.
func oauth2Config(cfg config.Google) *oauth2.Config {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       requiredScopes,
		Endpoint:     endpoint,
	}
}

// loadToken loads a previously saved token from disk. A missing file yields
// a nil token and no error.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token to disk.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if err := saveToken(s.path, tok); err != nil {
		log.Debugf("could not save refreshed token: %v", err)
	}
	return tok, nil
}

// Authenticate returns an HTTP client authorised for read access to Google
// Calendar. It loads the token from tokenFile, refreshes it if needed, or
// runs the browser login flow, printing instructions to prompt.
func Authenticate(ctx context.Context, cfg config.Google, tokenFile string, prompt io.Writer) (*http.Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: google.clientid is not configured", ErrUnauthenticated)
	}
	oc := oauth2Config(cfg)

	tok, err := loadToken(tokenFile)
	if err != nil {
		log.Warn(err)
		tok = nil
	}

	if tok != nil && !tok.Valid() {
		if tok.RefreshToken == "" {
			tok = nil
		} else if refreshed, err := oc.TokenSource(ctx, tok).Token(); err != nil {
			log.Warnf("token refresh failed (%v), re-authenticating", err)
			tok = nil
		} else {
			tok = refreshed
			if err := saveToken(tokenFile, tok); err != nil {
				log.Warnf("could not save refreshed token: %v", err)
			}
		}
	}

	if tok == nil {
		tok, err = login(ctx, oc, cfg.RedirectURL, prompt)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			log.Warnf("could not save token: %v", err)
		}
	}

	ts := &savingTokenSource{ts: oc.TokenSource(ctx, tok), path: tokenFile}
	return oauth2.NewClient(ctx, ts), nil
}

// login runs the installed-app loopback flow: it listens on a local port,
// sends the user to the consent page and exchanges the returned code.
func login(ctx context.Context, oc *oauth2.Config, redirectURL string, prompt io.Writer) (*oauth2.Token, error) {
	host, port := "127.0.0.1", "0"
	if redirectURL != "" {
		u, err := url.Parse(redirectURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect url %q: %w", redirectURL, err)
		}
		host = u.Hostname()
		if u.Port() != "" {
			port = u.Port()
		}
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("starting login listener: %w", err)
	}
	_, actualPort, _ := net.SplitHostPort(ln.Addr().String())

	flow := *oc
	flow.RedirectURL = "http://" + net.JoinHostPort(host, actualPort) + "/"

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	codes := make(chan string, 1)
	failures := make(chan error, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		if reason := q.Get("error"); reason != "" {
			fmt.Fprintln(w, "Sign-in failed. You can close this window.")
			select {
			case failures <- fmt.Errorf("%w: %s", ErrUnauthenticated, reason):
			default:
			}
			return
		}
		fmt.Fprintln(w, "Sign-in complete. You can close this window.")
		select {
		case codes <- q.Get("code"):
		default:
		}
	})}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	authURL := flow.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in, open this page in a web browser:")
	fmt.Fprintf(prompt, "  %s\n", authURL)
	fmt.Fprintln(prompt)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-failures:
		return nil, err
	case code := <-codes:
		tok, err := flow.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code: %w", err)
		}
		return tok, nil
	}
}
