package service

import (
	"time"

	"github.com/tathya/tathya-cli/pkg/api"
	"github.com/tathya/tathya-cli/pkg/client"
	"github.com/tathya/tathya-cli/pkg/config"
	"github.com/tathya/tathya-cli/pkg/credentials"
	"github.com/tathya/tathya-cli/pkg/feed"
	"github.com/tathya/tathya-cli/pkg/logger"
	"github.com/tathya/tathya-cli/pkg/output"
	"github.com/tathya/tathya-cli/pkg/prompter"
)

// Options wires an App
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	MediaBaseURL    string
	PageSize        int
	RealtimeEnabled bool
	RealtimeURL     string
	CredentialsPath string
	Session         *credentials.Credentials
	Out             *output.Printer
	In              *prompter.Prompter
}

// App holds the one session, HTTP client and feed controller a command
// runs with
type App struct {
	opts  Options
	HTTP  *client.Client
	Store *api.Store
	Feed  *feed.Controller
	Out   *output.Printer
	In    *prompter.Prompter
}

// NewApp builds the client stack around an explicit session
func NewApp(opts Options) *App {
	if opts.Out == nil {
		opts.Out = output.Default()
	}
	if opts.In == nil {
		opts.In = prompter.Stdio()
	}

	session := opts.Session
	if session != nil && !session.IsValid() {
		logger.Debug("Ignoring stored session", "expired", session.IsExpired())
		session = nil
	}

	httpClient := client.New(client.Options{
		BaseURL: opts.BaseURL,
		Timeout: opts.Timeout,
		Session: session,
	})
	store := api.NewStore(httpClient)

	a := &App{
		opts:  opts,
		HTTP:  httpClient,
		Store: store,
		Out:   opts.Out,
		In:    opts.In,
	}
	a.Feed = feed.NewController(store, session,
		feed.WithPageSize(opts.PageSize),
		feed.WithMediaBaseURL(opts.MediaBaseURL),
		feed.WithSessionExpired(a.sessionExpired),
	)
	return a
}

// FromConfig builds an App from the loaded configuration and the stored
// credentials
func FromConfig() (*App, error) {
	creds, err := credentials.LoadFrom(config.GetCredentialsPath())
	if err != nil {
		logger.Warn("Failed to load credentials", "error", err)
		creds = nil
	}

	return NewApp(Options{
		BaseURL:         config.GetString("api.base_url"),
		Timeout:         config.Timeout(),
		MediaBaseURL:    config.MediaBaseURL(),
		PageSize:        config.PageSize(),
		RealtimeEnabled: config.GetBool("realtime.enabled"),
		RealtimeURL:     config.GetString("realtime.url"),
		CredentialsPath: config.GetCredentialsPath(),
		Session:         creds,
	}), nil
}

// Session returns the active viewer session
func (a *App) Session() *credentials.Credentials {
	return a.Feed.Session()
}

// SetSession switches every component to creds
func (a *App) SetSession(creds *credentials.Credentials) {
	a.HTTP.SetSession(creds)
	a.Feed.SetSession(creds)
}

// sessionExpired runs after the store rejects the token
func (a *App) sessionExpired() {
	a.HTTP.ClearSession()
	if a.opts.CredentialsPath != "" {
		if err := credentials.DeleteFrom(a.opts.CredentialsPath); err != nil {
			logger.Warn("Failed to delete credentials", "error", err)
		}
	}
	a.Out.Warning("Your session has expired. Run 'tathya auth login' to sign in again.")
}
