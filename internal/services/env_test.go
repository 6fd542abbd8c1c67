package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/aggregates"
	"github.com/yungbote/journey-backend/internal/data/repos"
	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/realtime"
)

// testClock is a settable clock shared by every component of an env.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type env struct {
	db        *gorm.DB
	set       repos.Set
	clock     *testClock
	center    *realtime.Center
	metrics   *observability.Metrics
	gateway   IdentityGateway
	progress  ProgressService
	skillTree SkillTreeService
	users     UserService
	feedback  FeedbackService
	admin     AdminService
}

func newEnv(t *testing.T, adminEmails ...string) *env {
	t.Helper()
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	tpl, err := modjourney.LoadTemplates("")
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	set := repos.NewSet(db, log)
	metrics := observability.NewMetrics()
	center := realtime.NewCenter(log, nil, realtime.WithClock(clock.Now))
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps:  aggregates.BaseDeps{DB: db, Log: log, Clock: clock.Now, Hooks: aggregates.NewObservabilityHooks(metrics)},
		Progress:  set.Progress,
		SkillTree: set.SkillTree,
		Templates: tpl,
		Location:  time.UTC,
	})
	provider := NewIdentityProvider(db, log, set.User, set.UserToken, IdentityConfig{
		JWTSecret:   "test-secret",
		AccessTTL:   time.Hour,
		RefreshTTL:  24 * time.Hour,
		AdminEmails: adminEmails,
		BcryptCost:  bcrypt.MinCost,
		Clock:       clock.Now,
	})
	gateway := NewIdentityGateway(log, provider, metrics)
	progress := NewProgressService(ProgressServiceDeps{
		Log:       log,
		Aggregate: agg,
		Progress:  set.Progress,
		Center:    center,
		Metrics:   metrics,
		Location:  time.UTC,
		Clock:     clock.Now,
	})
	t.Cleanup(gateway.OnAuthStateChanged(progress.HandleAuthState))
	return &env{
		db:       db,
		set:      set,
		clock:    clock,
		center:   center,
		metrics:  metrics,
		gateway:  gateway,
		progress: progress,
		skillTree: NewSkillTreeService(SkillTreeServiceDeps{
			Log:        log,
			Aggregate:  agg,
			Users:      set.User,
			Progress:   set.Progress,
			SkillTrees: set.SkillTree,
			Templates:  tpl,
			Center:     center,
			Metrics:    metrics,
		}),
		users:    NewUserService(log, set.User, center),
		feedback: NewFeedbackService(log, set.Feedback, center),
		admin:    NewAdminService(log, set),
	}
}

func (e *env) signUp(t *testing.T, email string, interests ...string) *Session {
	t.Helper()
	s, err := e.gateway.SignUp(context.Background(), SignUpInput{
		Email:     email,
		Password:  "correct horse",
		FirstName: "Test",
		Interests: interests,
	})
	if err != nil {
		t.Fatalf("SignUp %s: %v", email, err)
	}
	return s
}
