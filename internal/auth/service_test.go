// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/account-service/internal/core"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: map[string]*RefreshToken{}}
}

func (m *memoryTokens) Create(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token.CreatedAt = time.Now()
	clone := *token
	m.tokens[token.ID] = &clone
	return nil
}

func (m *memoryTokens) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.TokenHash == hash {
			clone := *t
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
}

func (m *memoryTokens) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[id]
	if !ok {
		return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
	}
	clone := *t
	return &clone, nil
}

func (m *memoryTokens) MarkAsUsed(_ context.Context, id, replacedByID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[id]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedByID
	return nil
}

func (m *memoryTokens) revoke(match func(*RefreshToken) bool) {
	now := time.Now()
	for _, t := range m.tokens {
		if match(t) && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
}

func (m *memoryTokens) RevokeByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[id]; !ok {
		return core.ErrNotFound
	}
	m.revoke(func(t *RefreshToken) bool { return t.ID == id })
	return nil
}

func (m *memoryTokens) RevokeByFamilyID(_ context.Context, familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.revoke(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (m *memoryTokens) RevokeAllForUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.revoke(func(t *RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (m *memoryTokens) GetActiveSessionsForUser(_ context.Context, userID int64) ([]RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []RefreshToken
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsValid() {
			out = append(out, *t)
		}
	}
	return out, nil
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[int64]*UserInfo
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (m *memoryUsers) IncrementTokenVersion(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[id].TokenVersion++
	return nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[id].PasswordHash = hash
	return nil
}

func (m *memoryUsers) set(fn func(*UserInfo)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.users[1])
}

// plainVerifier accepts "hashed:<password>" and asks for a rehash of
// anything stored with the "legacy:" prefix.
type plainVerifier struct{}

func (plainVerifier) VerifyTimingSafe(password string, hash *string) (bool, string, error) {
	if hash == nil {
		return false, "", nil
	}
	if *hash == "legacy:"+password {
		return true, "hashed:" + password, nil
	}
	return *hash == "hashed:"+password, "", nil
}

type authFixture struct {
	service *Service
	tokens  *memoryTokens
	users   *memoryUsers
	redis   *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := &memoryUsers{users: map[int64]*UserInfo{
		1: {
			ID:           1,
			Email:        "Budi@Example.com",
			Name:         "Budi Santoso",
			PasswordHash: "hashed:password123",
			Role:         "Manager",
			Active:       true,
		},
	}}
	tokens := newMemoryTokens()

	return &authFixture{
		service: NewService(
			tokens,
			newTestJWTManager(t),
			users,
			plainVerifier{},
			rdb,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		),
		tokens: tokens,
		users:  users,
		redis:  mr,
	}
}

func (f *authFixture) login(t *testing.T) *AuthResponse {
	t.Helper()

	resp, err := f.service.Login(t.Context(), LoginRequest{
		Email:    "budi@example.com",
		Password: "password123",
	}, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	return resp
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)

	resp := f.login(t)
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, "Manager", resp.User.Role)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	assert.Equal(t, 15*60, resp.Tokens.ExpiresIn)

	claims, err := f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "Manager", claims.Role)
}

func TestLogin_Failures(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(t.Context(), LoginRequest{Email: "budi@example.com", Password: "wrong-password"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(t.Context(), LoginRequest{Email: "ghost@example.com", Password: "password123"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	f.users.set(func(u *UserInfo) { u.Active = false })
	_, err = f.service.Login(t.Context(), LoginRequest{Email: "budi@example.com", Password: "password123"}, "", "")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLogin_Rehash(t *testing.T) {
	f := newAuthFixture(t)
	f.users.set(func(u *UserInfo) { u.PasswordHash = "legacy:password123" })

	f.login(t)

	u, err := f.users.GetByID(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "hashed:password123", u.PasswordHash)
}

func TestRefresh_RotatesAndDetectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	first := f.login(t)

	second, err := f.service.Refresh(t.Context(), first.Tokens.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = f.service.Refresh(t.Context(), first.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrTokenReuse)

	_, err = f.service.Refresh(t.Context(), second.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = f.service.Refresh(t.Context(), "unknown", "", "")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestRefresh_InactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.login(t)

	f.users.set(func(u *UserInfo) { u.Active = false })

	_, err := f.service.Refresh(t.Context(), resp.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrAccountInactive)

	sessions, err := f.service.GetActiveSessions(t.Context(), 1)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.login(t)

	claims, err := f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(t.Context(), resp.Tokens.RefreshToken, claims))

	_, err = f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
	assert.True(t, f.redis.Exists(blacklistPrefix+claims.JTI))

	ttl := f.redis.TTL(blacklistPrefix + claims.JTI)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	_, err = f.service.Refresh(t.Context(), resp.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestLogout_ForeignRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.login(t)

	claims, err := f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	require.NoError(t, err)
	other := *claims
	other.UserID = 2

	err = f.service.Logout(t.Context(), resp.Tokens.RefreshToken, &other)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestLogoutAll_RevokesIssuedTokens(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.login(t)

	require.NoError(t, f.service.LogoutAll(t.Context(), 1))

	_, err := f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	fresh := f.login(t)
	_, err = f.service.VerifyAccessToken(t.Context(), fresh.Tokens.AccessToken)
	assert.NoError(t, err)
}

func TestVerifyAccessToken_AccountState(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.login(t)

	f.users.set(func(u *UserInfo) { u.Active = false })
	_, err := f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	f.users.mu.Lock()
	delete(f.users.users, 1)
	f.users.mu.Unlock()
	_, err = f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAccessToken_RedisDown(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.login(t)

	f.redis.Close()

	claims, err := f.service.VerifyAccessToken(t.Context(), resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestSessions(t *testing.T) {
	f := newAuthFixture(t)
	f.login(t)
	f.login(t)

	sessions, err := f.service.GetActiveSessions(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "test-agent", sessions[0].UserAgent)

	err = f.service.RevokeSession(t.Context(), 2, sessions[0].ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, f.service.RevokeSession(t.Context(), 1, sessions[0].ID))

	sessions, err = f.service.GetActiveSessions(t.Context(), 1)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestGetCurrentUser(t *testing.T) {
	f := newAuthFixture(t)

	me, err := f.service.GetCurrentUser(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Budi@Example.com", me.Email)

	_, err = f.service.GetCurrentUser(t.Context(), 99)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
