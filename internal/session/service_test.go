package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/domain/repository"
	"github.com/emarket/emarket/pkg/helpers"
)

type stubIdentities struct {
	createFn     func(ctx context.Context, id *entity.Identity) error
	getByIDFn    func(ctx context.Context, id string) (*entity.Identity, error)
	getByEmailFn func(ctx context.Context, email string) (*entity.Identity, error)
}

func (s *stubIdentities) Create(ctx context.Context, id *entity.Identity) error {
	if s.createFn != nil {
		return s.createFn(ctx, id)
	}
	id.ID = "ident-1"
	id.CreatedAt = time.Now().UTC()
	return nil
}

func (s *stubIdentities) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (s *stubIdentities) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

type stubProfiles struct {
	created []entity.Profile
	err     error
}

func (s *stubProfiles) CreateProfile(ctx context.Context, userID, email string) (*entity.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := entity.Profile{UserID: userID, Email: email, CreatedAt: time.Now().UTC()}
	s.created = append(s.created, p)
	return &p, nil
}

func newTestService(ids *stubIdentities, profiles *stubProfiles) *Service {
	return NewService(ids, profiles, testJWT(), nil, nil, nil, "eMarket", "")
}

func testJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestSignUpCreatesIdentityAndProfile(t *testing.T) {
	ids := &stubIdentities{}
	profiles := &stubProfiles{}
	svc := newTestService(ids, profiles)

	ident, pair, err := svc.SignUp(context.Background(), "  A@B.com ", "secret123")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, "a@b.com", ident.Email)
	assert.NotEmpty(t, ident.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(ident.PasswordHash, "secret123"))

	require.Len(t, profiles.created, 1)
	assert.Equal(t, ident.ID, profiles.created[0].UserID)
	assert.Equal(t, "a@b.com", profiles.created[0].Email)
	assert.False(t, profiles.created[0].CreatedAt.IsZero())

	assert.Equal(t, ident, svc.CurrentIdentity())
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	ids := &stubIdentities{
		getByEmailFn: func(ctx context.Context, email string) (*entity.Identity, error) {
			return &entity.Identity{ID: "existing", Email: email}, nil
		},
	}
	svc := newTestService(ids, &stubProfiles{})

	_, _, err := svc.SignUp(context.Background(), "a@b.com", "secret123")

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Nil(t, svc.CurrentIdentity())
}

func TestSignUpPasswordPolicy(t *testing.T) {
	svc := newTestService(&stubIdentities{}, &stubProfiles{})

	_, _, err := svc.SignUp(context.Background(), "a@b.com", "short")

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "password")
}

func TestSignUpRejectsBadEmail(t *testing.T) {
	svc := newTestService(&stubIdentities{}, &stubProfiles{})

	_, _, err := svc.SignUp(context.Background(), "not-an-email", "secret123")

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
}

func TestSignInWrongPasswordIsGeneric(t *testing.T) {
	hash, err := helpers.HashPassword("rightpassword")
	require.NoError(t, err)
	ids := &stubIdentities{
		getByEmailFn: func(ctx context.Context, email string) (*entity.Identity, error) {
			return &entity.Identity{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := newTestService(ids, &stubProfiles{})

	_, _, err = svc.SignIn(context.Background(), "a@b.com", "wrongpassword")

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "invalid email or password", cerr.Reason)
}

func TestSignInThenSignOut(t *testing.T) {
	hash, err := helpers.HashPassword("secret123")
	require.NoError(t, err)
	ids := &stubIdentities{
		getByEmailFn: func(ctx context.Context, email string) (*entity.Identity, error) {
			return &entity.Identity{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := newTestService(ids, &stubProfiles{})

	ident, _, err := svc.SignIn(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, ident, svc.CurrentIdentity())

	svc.SignOut(context.Background())
	assert.Nil(t, svc.CurrentIdentity())
}

func TestSignInIssuesTokenPair(t *testing.T) {
	hash, err := helpers.HashPassword("secret123")
	require.NoError(t, err)
	ids := &stubIdentities{
		getByEmailFn: func(ctx context.Context, email string) (*entity.Identity, error) {
			return &entity.Identity{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}
	jwt := testJWT()
	svc := NewService(ids, &stubProfiles{}, jwt, nil, nil, nil, "eMarket", "")

	_, pair, err := svc.SignIn(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	claims, err := jwt.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestRefreshSessionRotatesPair(t *testing.T) {
	jwt := testJWT()
	ids := &stubIdentities{
		getByIDFn: func(ctx context.Context, id string) (*entity.Identity, error) {
			return &entity.Identity{ID: id, Email: "a@b.com"}, nil
		},
	}
	svc := NewService(ids, &stubProfiles{}, jwt, nil, nil, nil, "eMarket", "")

	refresh, _, err := jwt.GenerateRefreshToken("u1")
	require.NoError(t, err)

	pair, err := svc.RefreshSession(context.Background(), refresh)
	require.NoError(t, err)
	require.NotNil(t, pair)

	claims, err := jwt.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestRefreshSessionRejectsGarbageToken(t *testing.T) {
	svc := newTestService(&stubIdentities{}, &stubProfiles{})

	_, err := svc.RefreshSession(context.Background(), "not.a.token")

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "invalid refresh token", cerr.Reason)
}

func TestRefreshSessionRejectsAccessToken(t *testing.T) {
	jwt := testJWT()
	svc := NewService(&stubIdentities{}, &stubProfiles{}, jwt, nil, nil, nil, "eMarket", "")

	// Access tokens are signed with a different secret and must not refresh.
	access, _, err := jwt.GenerateAccessToken("u1")
	require.NoError(t, err)

	_, err = svc.RefreshSession(context.Background(), access)

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
}

func TestRefreshSessionUnknownIdentity(t *testing.T) {
	jwt := testJWT()
	svc := NewService(&stubIdentities{}, &stubProfiles{}, jwt, nil, nil, nil, "eMarket", "")

	refresh, _, err := jwt.GenerateRefreshToken("gone")
	require.NoError(t, err)

	_, err = svc.RefreshSession(context.Background(), refresh)

	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
}

func TestEnsureSessionKeepsActiveIdentity(t *testing.T) {
	ids := &stubIdentities{}
	svc := newTestService(ids, &stubProfiles{})
	first, err := svc.EnsureSession(context.Background())
	require.NoError(t, err)

	second, err := svc.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestEnsureSessionFallsBackToAnonymous(t *testing.T) {
	ids := &stubIdentities{}
	svc := newTestService(ids, &stubProfiles{})

	ident, err := svc.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.True(t, ident.Anonymous)
	assert.Equal(t, ident, svc.CurrentIdentity())
}

func TestEnsureSessionAdoptsInitialToken(t *testing.T) {
	jwt := testJWT()
	token, _, err := jwt.GenerateAccessToken("u-token")
	require.NoError(t, err)

	ids := &stubIdentities{
		getByIDFn: func(ctx context.Context, id string) (*entity.Identity, error) {
			require.Equal(t, "u-token", id)
			return &entity.Identity{ID: id, Email: "t@b.com"}, nil
		},
	}
	svc := NewService(ids, &stubProfiles{}, jwt, nil, nil, nil, "eMarket", token)

	ident, err := svc.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-token", ident.ID)
	assert.False(t, ident.Anonymous)
}

func TestEnsureSessionBadTokenFails(t *testing.T) {
	svc := NewService(&stubIdentities{}, &stubProfiles{}, testJWT(), nil, nil, nil, "eMarket", "garbage.token.here")

	_, err := svc.EnsureSession(context.Background())

	var serr *SessionInitError
	require.ErrorAs(t, err, &serr)
	assert.Nil(t, svc.CurrentIdentity())
}

func TestEnsureSessionAnonymousFailure(t *testing.T) {
	ids := &stubIdentities{
		createFn: func(ctx context.Context, id *entity.Identity) error {
			return errors.New("db down")
		},
	}
	svc := newTestService(ids, &stubProfiles{})

	_, err := svc.EnsureSession(context.Background())

	var serr *SessionInitError
	require.ErrorAs(t, err, &serr)
}

func TestEventsObserveIdentityChanges(t *testing.T) {
	svc := newTestService(&stubIdentities{}, &stubProfiles{})
	events, cancel := svc.Events()
	defer cancel()

	ident, _, err := svc.SignUp(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	svc.SignOut(context.Background())

	first := <-events
	require.NotNil(t, first.Identity)
	assert.Equal(t, ident.ID, first.Identity.ID)

	second := <-events
	assert.Nil(t, second.Identity)
}
