// Package router maps navigation targets to named views and enforces
// the authentication guard in front of them.
package router

import (
	"context"
	"strings"

	"flatplan/internal/events"
	"flatplan/internal/session"
	"flatplan/internal/state"
)

// Route is one entry of the navigation table.
type Route struct {
	Path         string // pattern, ":name" segments bind params
	Name         string
	Title        string
	RequiresAuth bool
}

// DefaultTitle is used for routes without their own.
const DefaultTitle = "Flatplan"

// LoginRoute is the navigation target for unauthenticated access.
const LoginRoute = "/auth/login"

// landingRoute is where authenticated visits to the login page land.
const landingRoute = "/"

// Routes returns the application's navigation table.
func Routes() []Route {
	return []Route{
		{Path: "/", Name: "flats-list", Title: "Flats", RequiresAuth: true},
		{Path: "/flats", Name: "flats-list-alt", Title: "Flats", RequiresAuth: true},
		{Path: "/flats/:id", Name: "flat-detail", Title: "Flat details", RequiresAuth: true},
		{Path: "/layouts", Name: "layouts-list", Title: "Floor plans", RequiresAuth: true},
		{Path: "/layouts/:id", Name: "layout-detail", Title: "Floor plan details", RequiresAuth: true},
		{Path: "/editor/:id", Name: "floorplan-editor", Title: "Layout editor", RequiresAuth: true},
		{Path: "/diagnostics", Name: "diagnostics", Title: "Diagnostics", RequiresAuth: true},
		{Path: "/debug", Name: "debug", Title: "Debug", RequiresAuth: true},
		{Path: "/settings", Name: "settings", Title: "Settings", RequiresAuth: true},
		{Path: LoginRoute, Name: "login", Title: "Login"},
		{Path: "/auth/access", Name: "accessDenied", Title: "Access denied"},
		{Path: "/auth/error", Name: "error", Title: "Authentication error"},
	}
}

// notFound is the catch-all route.
var notFound = Route{Name: "notfound", Title: "404"}

// DecisionKind classifies a guard decision.
type DecisionKind int

const (
	// DecisionProceed lets the navigation through.
	DecisionProceed DecisionKind = iota

	// DecisionRedirect sends the navigation elsewhere.
	DecisionRedirect

	// DecisionReload asks for one full reload of the target.
	DecisionReload

	// DecisionNone means nothing to do (error already handled).
	DecisionNone
)

// Decision is the outcome of resolving a navigation.
type Decision struct {
	Kind    DecisionKind
	Route   *Route
	Params  map[string]string
	Target  string
	Replace bool
}

// Router resolves navigations against the route table.
type Router struct {
	routes  []Route
	session *session.Manager
	flags   state.Store
	logger  *events.Logger
}

// New creates a router over the default route table.
func New(sess *session.Manager, flags state.Store, logger *events.Logger) *Router {
	return &Router{
		routes:  Routes(),
		session: sess,
		flags:   flags,
		logger:  logger.WithField("component", "router"),
	}
}

// Resolve runs the guard for a navigation target. The session is
// initialized lazily, at most once, before the first guarded check.
// Unauthenticated access to a protected route redirects to the login
// route with the full original target as the `next` continuation;
// an authenticated visit to the login route redirects to the landing
// route.
func (r *Router) Resolve(ctx context.Context, fullPath string) (Decision, error) {
	if !r.session.Ready() {
		if err := r.session.Initialize(ctx); err != nil {
			return Decision{Kind: DecisionNone}, err
		}
	}

	path := fullPath
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}

	route, params := r.match(path)

	if route.RequiresAuth && !r.session.IsLoggedIn() {
		r.logger.WithField("path", fullPath).Debug("Redirecting to login")
		return Decision{
			Kind:   DecisionRedirect,
			Target: LoginRoute + "?next=" + fullPath,
		}, nil
	}

	if route.Name == "login" && r.session.IsLoggedIn() {
		return Decision{
			Kind:    DecisionRedirect,
			Target:  landingRoute,
			Replace: true,
		}, nil
	}

	return Decision{Kind: DecisionProceed, Route: route, Params: params}, nil
}

// Title returns the matched route's title for a path.
func (r *Router) Title(path string) string {
	route, _ := r.match(path)
	if route.Title != "" {
		return route.Title
	}
	return DefaultTitle
}

// loadErrorNeedle identifies a failed chunk load after a deploy swapped
// the hashed asset names out from under a running client.
const loadErrorNeedle = "Failed to fetch dynamically imported module"

// HandleLoadError recovers from a failed dynamic module load with at
// most one full reload of the target. The reload flag persists across
// the reload; a second failure for the same flag is surfaced instead
// of looping.
func (r *Router) HandleLoadError(err error, target string) Decision {
	if err == nil || !strings.Contains(err.Error(), loadErrorNeedle) {
		r.logger.WithError(err).Error("Navigation failed")
		return Decision{Kind: DecisionNone}
	}

	if _, getErr := r.flags.Get(state.KeyDynamicReload); getErr == nil {
		r.logger.WithError(err).Error("Module load failed again after reload")
		return Decision{Kind: DecisionNone}
	}

	if setErr := r.flags.Set(state.KeyDynamicReload, "true"); setErr != nil {
		r.logger.WithError(setErr).Warn("Failed to persist reload flag")
	}
	r.logger.WithField("target", target).Warn("Module load failed, reloading")
	return Decision{Kind: DecisionReload, Target: target}
}

// MarkReady clears the reload flag after a navigation completed, so
// the next deploy gets its own one-shot reload again.
func (r *Router) MarkReady() {
	if err := r.flags.Delete(state.KeyDynamicReload); err != nil {
		r.logger.WithError(err).Warn("Failed to clear reload flag")
	}
}

// match finds the route for a path; unmatched paths get the catch-all.
func (r *Router) match(path string) (*Route, map[string]string) {
	segments := splitPath(path)

	for i := range r.routes {
		route := &r.routes[i]
		patSegments := splitPath(route.Path)
		if len(patSegments) != len(segments) {
			continue
		}

		params := map[string]string{}
		ok := true
		for j, pat := range patSegments {
			if strings.HasPrefix(pat, ":") {
				params[pat[1:]] = segments[j]
				continue
			}
			if pat != segments[j] {
				ok = false
				break
			}
		}
		if ok {
			return route, params
		}
	}

	return &notFound, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
