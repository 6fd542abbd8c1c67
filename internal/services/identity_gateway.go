package services

import (
	"context"
	"sync"
	"time"

	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// AuthStateListener receives the identity a request acts as, or nil after a
// sign-out.
type AuthStateListener func(ctx context.Context, id *Identity)

// IdentityGateway is the only door to the identity provider. Every provider
// failure comes out as one unauthenticated error.
type IdentityGateway interface {
	SignUp(ctx context.Context, in SignUpInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Authenticate(ctx context.Context, accessToken string) (*Identity, error)
	// OnAuthStateChanged registers fn and returns a func that removes it.
	OnAuthStateChanged(fn AuthStateListener) (unsubscribe func())
	AccessTTL() time.Duration
}

type identityGateway struct {
	log      *logger.Logger
	provider IdentityProvider
	metrics  *observability.Metrics

	mu        sync.RWMutex
	nextID    int
	listeners map[int]AuthStateListener
}

func NewIdentityGateway(log *logger.Logger, provider IdentityProvider, metrics *observability.Metrics) IdentityGateway {
	return &identityGateway{
		log:       log.With("service", "IdentityGateway"),
		provider:  provider,
		metrics:   metrics,
		listeners: make(map[int]AuthStateListener),
	}
}

func (g *identityGateway) AccessTTL() time.Duration { return g.provider.AccessTTL() }

func (g *identityGateway) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	s, err := g.provider.SignUp(ctx, in)
	if err != nil {
		return nil, g.fail(ctx, "sign_up", err)
	}
	g.succeed("sign_up")
	g.notify(ctx, &s.Identity)
	return s, nil
}

func (g *identityGateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	s, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, g.fail(ctx, "sign_in", err)
	}
	g.succeed("sign_in")
	g.notify(ctx, &s.Identity)
	return s, nil
}

func (g *identityGateway) SignOut(ctx context.Context, accessToken string) error {
	if _, err := g.provider.SignOut(ctx, accessToken); err != nil {
		return g.fail(ctx, "sign_out", err)
	}
	g.succeed("sign_out")
	g.notify(ctx, nil)
	return nil
}

func (g *identityGateway) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	s, err := g.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, g.fail(ctx, "refresh", err)
	}
	g.succeed("refresh")
	return s, nil
}

func (g *identityGateway) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	id, err := g.provider.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, g.fail(ctx, "authenticate", err)
	}
	if id == nil {
		return nil, g.fail(ctx, "authenticate", errNoIdentity)
	}
	g.notify(ctx, id)
	return id, nil
}

func (g *identityGateway) OnAuthStateChanged(fn AuthStateListener) func() {
	if fn == nil {
		return func() {}
	}
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

func (g *identityGateway) notify(ctx context.Context, id *Identity) {
	g.mu.RLock()
	fns := make([]AuthStateListener, 0, len(g.listeners))
	for _, fn := range g.listeners {
		fns = append(fns, fn)
	}
	g.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx, id)
	}
}

// fail flattens err. The cause stays attached for logs; callers only see
// "authentication failed".
func (g *identityGateway) fail(ctx context.Context, event string, err error) error {
	g.metrics.IncAuthEvent(event, "failure")
	if code := domainagg.CodeOf(err); code == "" || code == domainagg.CodeInternal {
		g.log.Error("identity provider failure", "event", event, "error", err)
	} else {
		g.log.Debug("authentication rejected", "event", event, "code", code, "error", err)
	}
	return domainagg.NewError(domainagg.CodeUnauthenticated, "identity."+event, "authentication failed", err)
}

func (g *identityGateway) succeed(event string) {
	g.metrics.IncAuthEvent(event, "success")
}
