// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sentinel-vault/sentinel/buildvars"
	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/config"
	"github.com/sentinel-vault/sentinel/internal/db"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/session"
	"github.com/sentinel-vault/sentinel/internal/share"
	"github.com/sentinel-vault/sentinel/internal/vault"
	"github.com/sentinel-vault/sentinel/internal/viewer"
)

// Options adjust how an App is wired. The zero value is production wiring.
type Options struct {
	HTTPClient *http.Client
	// SessionStore replaces the file store from configuration.
	SessionStore session.Store
	// Announce is told every loopback URL before a browser opens it.
	Announce func(*url.URL)
	// OpenBrowser replaces the system browser launcher.
	OpenBrowser func(*url.URL) error
	// PipeOutput receives the stdout of external viewers.
	PipeOutput io.Writer
}

// App is the wired client: one session, one vault, one cache and one viewer
// surface.
type App struct {
	Config   config.Config
	Holder   *session.Holder
	Client   *vault.Client
	Store    *db.Store
	Catalog  *catalog.Catalog
	Shares   *share.Registry
	Surface  *render.Session
	Loopback *viewer.Loopback
	Browser  *viewer.BrowserTarget
	Router   *viewer.Router
	Actions  *Actions
}

// NewApp wires every component from cfg.
func NewApp(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout, _ := cfg.VaultTimeout()

	store := opts.SessionStore
	if store == nil {
		var err error
		if store, err = sessionStore(cfg); err != nil {
			return nil, err
		}
	}
	holder, err := session.NewHolder(store)
	if err != nil {
		return nil, err
	}

	client, err := vault.New(cfg.Vault.URL, holder, vault.Options{
		HTTPClient: opts.HTTPClient,
		Timeout:    timeout,
		UserAgent:  "sentinel/" + buildvars.VersionOrDefault("dev"),
	})
	if err != nil {
		return nil, err
	}

	cache, err := db.Open(cfg.Cache.Type, cfg.Cache.Dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	cat := catalog.New(client, cache)
	holder.OnClear(func(reason session.ClearReason) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := cat.Purge(ctx); err != nil {
			logging.Warnf("purging cache after %s: %v", reason, err)
		}
	})

	lb := viewer.NewLoopback()
	browser := &viewer.BrowserTarget{Loopback: lb, Open: opts.OpenBrowser, Announce: opts.Announce}
	router, err := viewer.NewRouterFromCommands(viewer.Commands{
		Document: cfg.Viewer.Document,
		Video:    cfg.Viewer.Video,
		Audio:    cfg.Viewer.Audio,
	}, browser)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	if opts.PipeOutput != nil {
		for _, t := range router.Pipes() {
			t.Stdout = opts.PipeOutput
		}
	}

	surface := render.NewSession(0)
	app := &App{
		Config:   cfg,
		Holder:   holder,
		Client:   client,
		Store:    cache,
		Catalog:  cat,
		Shares:   share.NewRegistry(client),
		Surface:  surface,
		Loopback: lb,
		Browser:  browser,
		Router:   router,
	}
	app.Actions = &Actions{
		Session: holder,
		Fetcher: client,
		Surface: surface,
		Viewer:  router,
		Ledger:  cat,
		Names:   cat,
	}
	return app, nil
}

// sessionStore picks the credential store. SENTINEL_CREDENTIAL wins and is
// never written to disk.
func sessionStore(cfg config.Config) (session.Store, error) {
	cred, ok, err := session.LoadEnv()
	if err != nil {
		return nil, err
	}
	if ok {
		logging.Debugf("using credential from SENTINEL_CREDENTIAL")
		return session.NewMemoryStore(cred), nil
	}
	return session.NewFileStore(cfg.Session.File), nil
}

// Logout clears the credential; the cache is purged by the clear observer.
func (a *App) Logout() error {
	a.Surface.Reset()
	return a.Holder.Clear(session.ReasonLogout)
}

// Close tears down the viewer surface, the loopback server and the cache.
func (a *App) Close() error {
	a.Surface.Reset()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(a.Loopback.Shutdown(ctx), a.Store.Close())
}
