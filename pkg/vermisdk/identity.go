package vermisdk

import (
	"context"
	"sync"
)

// AuthSession is the authenticated state handed out by the identity provider.
type AuthSession struct {
	AuthUID      string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int64
}

// IdentityProvider authenticates end users and announces sign-in state
// transitions to subscribers.
type IdentityProvider interface {
	// SignUp registers a new identity, attaching the display name as profile
	// metadata, and returns its session.
	SignUp(ctx context.Context, email, password, displayName string) (AuthSession, error)
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (AuthSession, error)
	// CurrentSession returns the active session, if any.
	CurrentSession(ctx context.Context) (AuthSession, bool, error)
	// SignOut discards the current session and notifies subscribers.
	SignOut()
	// Subscribe registers callbacks for sign-in transitions. The returned
	// function removes the subscription; calling it more than once is a no-op.
	Subscribe(onSignedIn func(AuthSession), onSignedOut func()) (unsubscribe func())
}

// identityBroadcaster fans sign-in transitions out to subscribers. Sign-in
// callbacks fire on SignIn and SignUp, sign-out callbacks on SignOut.
type identityBroadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

type subscriber struct {
	onSignedIn  func(AuthSession)
	onSignedOut func()
}

func (b *identityBroadcaster) subscribe(onSignedIn func(AuthSession), onSignedOut func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = map[int]subscriber{}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{onSignedIn: onSignedIn, onSignedOut: onSignedOut}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
		})
	}
}

func (b *identityBroadcaster) emitSignedIn(session AuthSession) {
	for _, sub := range b.snapshot() {
		if sub.onSignedIn != nil {
			sub.onSignedIn(session)
		}
	}
}

func (b *identityBroadcaster) emitSignedOut() {
	for _, sub := range b.snapshot() {
		if sub.onSignedOut != nil {
			sub.onSignedOut()
		}
	}
}

func (b *identityBroadcaster) snapshot() []subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := make([]subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	return subs
}
