// Package google implements the remote collaborators on top of Google
// Calendar and Google Tasks.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"calpersonal/internal/remote"
)

// Kind selects which API a token grants.
type Kind string

const (
	KindEvents Kind = "events"
	KindTasks  Kind = "tasks"
)

func (k Kind) scope() string {
	if k == KindTasks {
		return tasks.TasksScope
	}
	return calendar.CalendarScope
}

// ErrNoToken means the consent flow has not been run for a kind yet.
var ErrNoToken = errors.New("no stored token; run `calpersonal auth`")

// Provider hands out service handles built from stored OAuth tokens. It
// never starts a consent flow itself; Authorize does that.
type Provider struct {
	ClientSecretFile string
	TokenDir         string
	Log              logrus.FieldLogger

	// Options are appended to every service constructor (tests point them at
	// an httptest server).
	Options []option.ClientOption
}

var _ remote.AuthProvider = (*Provider)(nil)

func (p *Provider) CalendarHandle(ctx context.Context) remote.Handle[remote.CalendarService] {
	opts, err := p.clientOptions(ctx, KindEvents)
	if err != nil {
		p.log().WithError(err).WithField("kind", KindEvents).Warn("calendar handle unavailable")
		return remote.Unavailable[remote.CalendarService]()
	}
	svc, err := NewCalendarClient(ctx, opts...)
	if err != nil {
		p.log().WithError(err).WithField("kind", KindEvents).Warn("calendar handle unavailable")
		return remote.Unavailable[remote.CalendarService]()
	}
	return remote.Available[remote.CalendarService](svc)
}

func (p *Provider) TaskHandle(ctx context.Context) remote.Handle[remote.TaskService] {
	opts, err := p.clientOptions(ctx, KindTasks)
	if err != nil {
		p.log().WithError(err).WithField("kind", KindTasks).Warn("task handle unavailable")
		return remote.Unavailable[remote.TaskService]()
	}
	svc, err := NewTaskClient(ctx, opts...)
	if err != nil {
		p.log().WithError(err).WithField("kind", KindTasks).Warn("task handle unavailable")
		return remote.Unavailable[remote.TaskService]()
	}
	return remote.Available[remote.TaskService](svc)
}

func (p *Provider) log() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

func (p *Provider) clientOptions(ctx context.Context, kind Kind) ([]option.ClientOption, error) {
	if len(p.Options) > 0 {
		return p.Options, nil
	}
	cfg, err := p.oauthConfig(kind)
	if err != nil {
		return nil, err
	}
	path := p.TokenPath(kind)
	tok, err := tokenFromFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("read token %s: %w", path, err)
	}
	ts := &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: path,
		last: tok.AccessToken,
		log:  p.log(),
	}
	return []option.ClientOption{option.WithTokenSource(oauth2.ReuseTokenSource(tok, ts))}, nil
}

// TokenPath is where the token for kind is stored.
func (p *Provider) TokenPath(kind Kind) string {
	return filepath.Join(p.TokenDir, "token-"+string(kind)+".json")
}

func (p *Provider) oauthConfig(kind Kind) (*oauth2.Config, error) {
	b, err := os.ReadFile(p.ClientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, kind.scope())
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}
	return cfg, nil
}

// Authorize runs the installed-app consent flow for kind: it listens on a
// loopback port, prints the consent URL to out, waits for the redirect and
// stores the resulting token.
func (p *Provider) Authorize(ctx context.Context, kind Kind, out io.Writer) error {
	cfg, err := p.oauthConfig(kind)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen for redirect: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())
	state := uuid.NewString()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			errCh <- fmt.Errorf("no authorization code received: %s", q.Get("error"))
			http.Error(w, "no authorization code", http.StatusBadRequest)
			return
		}
		select {
		case codeCh <- code:
		default:
		}
		fmt.Fprintln(w, "Authorized. You can close this window.")
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer server.Shutdown(context.Background())

	fmt.Fprintf(out, "Open this URL to authorize %s access:\n\n%s\n\n", kind,
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return errors.New("timed out waiting for authorization")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if err := saveToken(p.TokenPath(kind), tok); err != nil {
		return err
	}
	p.log().WithField("kind", kind).Info("token stored")
	return nil
}

// savingTokenSource persists refreshed tokens so the next start can reuse them.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string
	log  logrus.FieldLogger

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			s.log.WithError(err).Warn("save refreshed token")
		}
	}
	return tok, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return os.Rename(tmp, path)
}
