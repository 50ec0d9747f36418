// Package router translates the location fragment into a mounted page,
// enforcing authentication and role guards. All error-like conditions
// (unauthenticated, unauthorized, unknown route) resolve via redirect to a
// safe default; routing itself never fails. A page whose Render or Mount
// panics is not caught here; the crash is left visible rather than
// silently swallowed.
package router

import (
	"context"
	"net/url"
	"strings"

	"github.com/Dasparmv/FORTELV2/internal/store"
	"github.com/Dasparmv/FORTELV2/internal/types"
	"github.com/rs/zerolog"
)

// Context carries the resolved path and query to a page
type Context struct {
	Path  string
	Query map[string]string
}

// Page renders markup for a route. Render must be pure and synchronous.
type Page interface {
	Title() string
	Render(ctx Context) string
}

// Mounter is implemented by pages with side effects: wiring listeners and
// store subscriptions. The returned cleanup runs before the next page
// mounts and must unsubscribe everything the page registered, or listeners
// leak across navigations. A nil cleanup is allowed.
type Mounter interface {
	Mount(ctx Context) func()
}

// Chrome renders the persistent shell around pages
type Chrome interface {
	RenderChrome(sess *types.Session)
	ClearChrome()
	SetView(title, markup string)
}

// Location abstracts the addressable fragment (the browser's location
// hash). SetHash triggers the listeners registered via Listen, including
// the router's own.
type Location interface {
	Hash() string
	SetHash(hash string)
	Listen(fn func()) (unsubscribe func())
}

// Route binds a path to a page and its guards
type Route struct {
	Path  string
	Page  Page
	Auth  bool
	Roles []types.Role // nil means no role restriction
}

const (
	loginPath   = "/login"
	defaultPath = "/dashboard"
)

// Router owns the page lifecycle: exactly one page is mounted at a time,
// and mounting a new page always cleans up the previous one first.
type Router struct {
	store  *store.Store
	loc    Location
	chrome Chrome
	routes []Route
	logger zerolog.Logger

	ctx      context.Context
	cleanup  func()
	unlisten func()
}

// New creates a router over a static route table
func New(st *store.Store, loc Location, chrome Chrome, routes []Route, logger zerolog.Logger) *Router {
	return &Router{store: st, loc: loc, chrome: chrome, routes: routes, logger: logger}
}

// Start installs the hash-change listener and performs the initial
// navigation.
func (r *Router) Start(ctx context.Context) {
	r.ctx = ctx
	r.unlisten = r.loc.Listen(func() { r.Route() })
	r.Route()
}

// Stop removes the hash listener and unmounts the current page
func (r *Router) Stop() {
	if r.unlisten != nil {
		r.unlisten()
		r.unlisten = nil
	}
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
}

// Route runs the navigation logic against the current hash. Redirects
// rewrite the hash, which re-enters Route through the location listener,
// so the redirecting call returns without further work.
func (r *Router) Route() {
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	sess := r.store.Session(ctx)
	path, query := ParseHash(r.loc.Hash())

	if sess == nil && path != loginPath {
		r.loc.SetHash("#" + loginPath)
		return
	}
	if sess != nil && (path == "/" || path == loginPath) {
		r.loc.SetHash("#" + defaultPath)
		return
	}

	def := r.resolve(path)
	if def == nil {
		return
	}

	if def.Auth && sess == nil {
		r.loc.SetHash("#" + loginPath)
		return
	}
	if def.Roles != nil && !r.store.RequireRole(ctx, def.Roles) {
		// lacking the role silently downgrades to the dashboard
		r.loc.SetHash("#" + defaultPath)
		return
	}

	if sess != nil {
		r.chrome.RenderChrome(sess)
	} else {
		r.chrome.ClearChrome()
	}

	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}

	pctx := Context{Path: path, Query: query}
	r.chrome.SetView(def.Page.Title(), def.Page.Render(pctx))

	if m, ok := def.Page.(Mounter); ok {
		r.cleanup = m.Mount(pctx)
	}

	// re-render chrome after mount so active-link highlighting reflects
	// the now-current hash
	if sess != nil {
		r.chrome.RenderChrome(sess)
	}

	r.logger.Debug().Str("path", path).Msg("routed")
}

// resolve returns the route for path, falling back to the dashboard entry
// for unknown paths.
func (r *Router) resolve(path string) *Route {
	var fallback *Route
	for i := range r.routes {
		if r.routes[i].Path == path {
			return &r.routes[i]
		}
		if r.routes[i].Path == defaultPath {
			fallback = &r.routes[i]
		}
	}
	return fallback
}

// ParseHash splits a location fragment into a path and a flat query map.
// A fragment that does not start with "/" (after the leading "#") resolves
// to the dashboard. Query pairs are &-separated key=value with percent
// decoding; a missing value defaults to the empty string.
func ParseHash(hash string) (string, map[string]string) {
	h := strings.TrimPrefix(hash, "#")
	if !strings.HasPrefix(h, "/") {
		h = defaultPath
	}

	path, rawQuery, _ := strings.Cut(h, "?")
	query := make(map[string]string)
	if rawQuery != "" {
		for _, kv := range strings.Split(rawQuery, "&") {
			k, v, _ := strings.Cut(kv, "=")
			// percent decoding only; a literal "+" stays a "+"
			dk, err := url.PathUnescape(k)
			if err != nil {
				dk = k
			}
			dv, err := url.PathUnescape(v)
			if err != nil {
				dv = v
			}
			query[dk] = dv
		}
	}
	return path, query
}
