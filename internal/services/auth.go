package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

const minPasswordLength = 8

// Identity is the authenticated principal behind a request.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func (i *Identity) IsAdmin() bool { return i != nil && i.Role == types.RoleAdmin }

// Session is a freshly issued token pair.
type Session struct {
	Identity     Identity `json:"identity"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
}

type SignUpInput struct {
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	FreeTime      string   `json:"free_time"`
	WorkingStatus string   `json:"working_status"`
	StudentStatus string   `json:"student_status"`
	Interests     []string `json:"interests"`
	Goals         string   `json:"goals"`
}

// IdentityProvider issues and verifies credentials. Errors carry their real
// cause; IdentityGateway is what flattens them for callers.
type IdentityProvider interface {
	SignUp(ctx context.Context, in SignUpInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) (*Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Authenticate(ctx context.Context, accessToken string) (*Identity, error)
	AccessTTL() time.Duration
}

type IdentityConfig struct {
	JWTSecret   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	AdminEmails []string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Clock      func() time.Time
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type identityProvider struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	cfg           IdentityConfig
	admins        map[string]bool
}

func NewIdentityProvider(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, userTokenRepo repos.UserTokenRepo, cfg IdentityConfig) IdentityProvider {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[repos.NormalizeEmail(e)] = true
	}
	return &identityProvider{
		db:            db,
		log:           log.With("service", "IdentityProvider"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		cfg:           cfg,
		admins:        admins,
	}
}

func (p *identityProvider) AccessTTL() time.Duration { return p.cfg.AccessTTL }

func (p *identityProvider) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	const op = "identity.SignUp"
	email := repos.NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "invalid email", err)
	}
	if len(in.Password) < minPasswordLength {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("password must be at least %d characters", minPasswordLength), nil)
	}
	categories, err := modjourney.NormalizeInterests(in.Interests)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := types.RoleMember
	if p.admins[email] {
		role = types.RoleAdmin
	}

	var session *Session
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := p.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return domainagg.NewError(domainagg.CodeConflict, op, "email already registered", nil)
		}
		u := &types.User{
			Email:         email,
			Password:      string(hash),
			FirstName:     strings.TrimSpace(in.FirstName),
			LastName:      strings.TrimSpace(in.LastName),
			FreeTime:      strings.TrimSpace(in.FreeTime),
			WorkingStatus: strings.TrimSpace(in.WorkingStatus),
			StudentStatus: strings.TrimSpace(in.StudentStatus),
			Interests:     modjourney.CategoryNames(categories),
			Goals:         strings.TrimSpace(in.Goals),
			Role:          role,
		}
		if _, err := p.userRepo.Create(dbc, []*types.User{u}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		session, err = p.issue(dbc, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("user signed up", "user_id", session.Identity.UserID)
	return session, nil
}

func (p *identityProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "identity.SignIn"
	email = repos.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "email and password required", nil)
	}

	var session *Session
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		users, err := p.userRepo.GetByEmails(dbc, []string{email})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(users) == 0 {
			return domainagg.NewError(domainagg.CodeUnauthenticated, op, "unknown email", nil)
		}
		u := users[0]
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
			return domainagg.NewError(domainagg.CodeUnauthenticated, op, "wrong password", err)
		}
		if p.admins[u.Email] && u.Role != types.RoleAdmin {
			if err := p.userRepo.UpdateRole(dbc, u.ID, types.RoleAdmin); err != nil {
				return fmt.Errorf("promote admin: %w", err)
			}
			u.Role = types.RoleAdmin
		}
		session, err = p.issue(dbc, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (p *identityProvider) SignOut(ctx context.Context, accessToken string) (*Identity, error) {
	const op = "identity.SignOut"
	id, err := p.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	tokens, err := p.userTokenRepo.GetByAccessTokens(dbc, []string{accessToken})
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if len(tokens) == 0 {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "session already ended", nil)
	}
	if err := p.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{tokens[0].ID}); err != nil {
		return nil, fmt.Errorf("delete token: %w", err)
	}
	return id, nil
}

func (p *identityProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	const op = "identity.Refresh"
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing refresh token", nil)
	}

	var session *Session
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := p.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if len(found) == 0 {
			return domainagg.NewError(domainagg.CodeUnauthenticated, op, "unknown refresh token", nil)
		}
		existing := found[0]
		if !existing.ExpiresAt.After(p.cfg.Clock()) {
			return domainagg.NewError(domainagg.CodeUnauthenticated, op, "refresh token expired", nil)
		}
		consumed, err := p.userTokenRepo.ConsumeRefreshToken(dbc, refreshToken)
		if err != nil {
			return fmt.Errorf("consume refresh token: %w", err)
		}
		if !consumed {
			return domainagg.NewError(domainagg.CodeUnauthenticated, op, "refresh token already used", nil)
		}
		users, err := p.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(users) == 0 {
			return domainagg.NewError(domainagg.CodeUnauthenticated, op, "user no longer exists", nil)
		}
		session, err = p.issue(dbc, users[0])
		return err
	})
	if err != nil {
		// The transaction rolled back; expired tokens are removed outside it.
		if domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
			p.dropExpiredRefresh(ctx, refreshToken)
		}
		return nil, err
	}
	return session, nil
}

func (p *identityProvider) dropExpiredRefresh(ctx context.Context, refreshToken string) {
	dbc := dbctx.Context{Ctx: ctx}
	found, err := p.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
	if err != nil || len(found) == 0 || found[0].ExpiresAt.After(p.cfg.Clock()) {
		return
	}
	if err := p.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{found[0].ID}); err != nil {
		p.log.Warn("delete expired refresh token failed", "error", err)
	}
}

func (p *identityProvider) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	const op = "identity.Authenticate"
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "missing token", nil)
	}
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(p.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.cfg.Clock))
	if err != nil || !parsed.Valid {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "invalid or expired token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "invalid subject", err)
	}
	tokens, err := p.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{accessToken})
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if len(tokens) == 0 {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "session ended", nil)
	}
	return &Identity{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

func (p *identityProvider) issue(dbc dbctx.Context, u *types.User) (*Session, error) {
	now := p.cfg.Clock()
	claims := accessClaims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.cfg.AccessTTL)),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	token := &types.UserToken{
		UserID:       u.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    now.Add(p.cfg.RefreshTTL),
	}
	if _, err := p.userTokenRepo.Create(dbc, []*types.UserToken{token}); err != nil {
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &Session{
		Identity:     Identity{UserID: u.ID, Email: u.Email, Role: u.Role},
		AccessToken:  access,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int(p.cfg.AccessTTL / time.Second),
	}, nil
}

var errNoIdentity = errors.New("no authenticated identity")
