package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gatekeep-backend/internal/models"
	"gatekeep-backend/internal/repository"
	"gatekeep-backend/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by email

	createFn  func(ctx context.Context, user *models.User) error
	byEmailFn func(ctx context.Context, email string) (*models.User, error)
	byIDFn    func(ctx context.Context, id string) (*models.User, error)
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, user)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailFn != nil {
		return f.byEmailFn(ctx, email)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[email], nil
}

func (f *fakeUserStore) ByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDFn != nil {
		return f.byIDFn(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type fakeBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time

	addFn      func(ctx context.Context, fingerprint string, expiresAt time.Time) error
	containsFn func(ctx context.Context, fingerprint string) (bool, error)
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{entries: map[string]time.Time{}}
}

func (f *fakeBlacklist) Add(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	if f.addFn != nil {
		return f.addFn(ctx, fingerprint, expiresAt)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[fingerprint]; !ok {
		f.entries[fingerprint] = expiresAt
	}
	return nil
}

func (f *fakeBlacklist) Contains(ctx context.Context, fingerprint string) (bool, error) {
	if f.containsFn != nil {
		return f.containsFn(ctx, fingerprint)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.entries[fingerprint]
	return ok && exp.After(time.Now()), nil
}

// fakeHasher avoids bcrypt cost in tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (fakeHasher) Compare(plain, hash string) bool   { return hash == "hashed:"+plain }

// fakeStrength calls anything shorter than 10 runes weak.
type fakeStrength struct{}

func (fakeStrength) Check(pw string, _ []string) error {
	if len(pw) < 10 {
		return errWeakForTest
	}
	return nil
}

var errWeakForTest = assert.AnError

type fixture struct {
	service   *AuthService
	users     *fakeUserStore
	blacklist *fakeBlacklist
	codec     *token.Codec
}

func newFixture() *fixture {
	users := newFakeUserStore()
	blacklist := newFakeBlacklist()
	codec := token.NewCodec("service-test-secret", time.Hour, 24*time.Hour)
	service := NewAuthService(users, blacklist, codec, fakeHasher{}, fakeStrength{})
	return &fixture{service: service, users: users, blacklist: blacklist, codec: codec}
}

func (fx *fixture) register(t *testing.T, email, pw string) *TokenPair {
	t.Helper()
	pair, err := fx.service.Register(context.Background(), email, pw, pw)
	require.NoError(t, err)
	return pair
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Positive(t, pair.AccessTokenExpiresIn)
	assert.Positive(t, pair.RefreshTokenExpiresIn)

	claims, err := fx.codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.ClassAccess, claims.Type)

	claims, err = fx.codec.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, token.ClassRefresh, claims.Type)
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	cases := [][3]string{
		{"", "Str0ngPass!", "Str0ngPass!"},
		{"a@x.com", "", "Str0ngPass!"},
		{"a@x.com", "Str0ngPass!", ""},
	}
	for _, c := range cases {
		_, err := fx.service.Register(context.Background(), c[0], c[1], c[2])
		assert.ErrorIs(t, err, ErrMissingRegistration)
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	_, err := fx.service.Register(context.Background(), "a@x.com", "Str0ngPass!", "0therPass!!")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestRegister_WeakPassword(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	_, err := fx.service.Register(context.Background(), "a@x.com", "short", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	fx.register(t, "a@x.com", "Str0ngPass!")

	_, err := fx.service.Register(context.Background(), "a@x.com", "Str0ngPass!", "Str0ngPass!")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Case-insensitive: the same address with different casing is still a
	// conflict.
	_, err = fx.service.Register(context.Background(), "A@X.com", "Str0ngPass!", "Str0ngPass!")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_DuplicateRace(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	// Lookup says free, the insert hits the unique index: the conflict is
	// still reported as a taken email.
	fx.users.byEmailFn = func(context.Context, string) (*models.User, error) { return nil, nil }
	fx.users.createFn = func(context.Context, *models.User) error { return repository.ErrDuplicateEmail }

	_, err := fx.service.Register(context.Background(), "a@x.com", "Str0ngPass!", "Str0ngPass!")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	fx.register(t, "a@x.com", "Str0ngPass!")

	pair, err := fx.service.Login(context.Background(), "a@x.com", "Str0ngPass!")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestLogin_UniformFailure(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	fx.register(t, "a@x.com", "Str0ngPass!")

	_, wrongPassword := fx.service.Login(context.Background(), "a@x.com", "WrongPass!!")
	_, unknownEmail := fx.service.Login(context.Background(), "b@x.com", "Str0ngPass!")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	// Identical outcome regardless of which part failed.
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	_, err := fx.service.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = fx.service.Login(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	next, err := fx.service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
}

func TestRefresh_Replay(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	_, err := fx.service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	// Immediate replay and every later use are rejected.
	for i := 0; i < 2; i++ {
		_, err = fx.service.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	_, err := fx.service.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_MissingToken(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	_, err := fx.service.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingRefreshToken)
}

func TestRefresh_GarbageToken(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	_, err := fx.service.Refresh(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_BurnsTokenWhenSubjectGone(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	// Simulate the account disappearing between issuance and refresh.
	fx.users.byIDFn = func(context.Context, string) (*models.User, error) { return nil, nil }

	_, err := fx.service.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The failed attempt still consumed the token.
	revoked, err := fx.blacklist.Contains(context.Background(), fx.codec.Fingerprint(pair.RefreshToken))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRefresh_StoreFailureIsNotClientError(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	fx.blacklist.containsFn = func(context.Context, string) (bool, error) {
		return false, assert.AnError
	}

	_, err := fx.service.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.False(t, IsClientError(err))
	assert.True(t, strings.Contains(err.Error(), "checking blacklist"))
}

// --- Verify ---

func TestVerify_Success(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	userID, err := fx.service.Verify(pair.AccessToken)
	require.NoError(t, err)

	user, err := fx.users.ByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestVerify_RejectsRefreshToken(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	_, err := fx.service.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestVerify_MissingToken(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	_, err := fx.service.Verify("")
	assert.ErrorIs(t, err, ErrMissingAccessToken)
}

// --- Revoke ---

func TestRevoke_Idempotent(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	require.NoError(t, fx.service.Revoke(context.Background(), pair.RefreshToken))
	require.NoError(t, fx.service.Revoke(context.Background(), pair.RefreshToken))
}

func TestRevoke_ThenRefreshRejected(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	require.NoError(t, fx.service.Revoke(context.Background(), pair.RefreshToken))

	_, err := fx.service.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevoke_RejectsAccessToken(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	pair := fx.register(t, "a@x.com", "Str0ngPass!")

	err := fx.service.Revoke(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRevoke_MissingToken(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	err := fx.service.Revoke(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingRefreshToken)
}
