package session

import (
	"time"
)

// Route is a navigable view in the client shell.
type Route string

const (
	RouteEntry      Route = "/"
	RouteSignIn     Route = "/signin"
	RouteSelectTank Route = "/select-tank"
	RouteCheckEmail Route = "/check-email"
	RouteHome       Route = "/home"
)

// GuardState is the route guard's view of the session.
type GuardState int

const (
	StateLoading GuardState = iota
	StateUnauthenticated
	StateAuthenticated
)

// allowedUnauthenticated are the routes reachable without a session.
var allowedUnauthenticated = map[Route]struct{}{
	RouteEntry:      {},
	RouteSignIn:     {},
	RouteSelectTank: {},
	RouteCheckEmail: {},
}

// Guard redirects between authenticated and unauthenticated views based on
// the session store.
type Guard struct {
	store     *Store
	navigate  func(Route)
	exitDelay time.Duration
}

// NewGuard constructs a Guard. navigate is invoked for every redirect the
// guard decides on.
func NewGuard(store *Store, navigate func(Route), exitDelay time.Duration) *Guard {
	if store == nil {
		panic("session store is required")
	}
	if navigate == nil {
		panic("navigate is required")
	}
	return &Guard{store: store, navigate: navigate, exitDelay: exitDelay}
}

// State reports the guard's current state.
func (g *Guard) State() GuardState {
	snapshot := g.store.Snapshot()
	switch {
	case snapshot.Loading:
		return StateLoading
	case snapshot.IsAuthenticated:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Resolve decides whether the current route requires a redirect and performs
// it. While loading, no navigation happens.
func (g *Guard) Resolve(current Route) (Route, bool) {
	switch g.State() {
	case StateLoading:
		return "", false
	case StateAuthenticated:
		if current == RouteEntry {
			g.navigate(RouteHome)
			return RouteHome, true
		}
		return "", false
	default:
		if _, ok := allowedUnauthenticated[current]; !ok {
			g.navigate(RouteEntry)
			return RouteEntry, true
		}
		return "", false
	}
}

// Logout flips the authenticated flag immediately, waits out the exit
// transition, signs out of the identity provider, wipes every persisted key,
// and navigates to the entry route exactly once.
func (g *Guard) Logout() {
	g.store.setUnauthenticated()

	if g.exitDelay > 0 {
		time.Sleep(g.exitDelay)
	}

	g.store.identity.SignOut()
	g.store.clearAll()
	g.navigate(RouteEntry)
}
