package auth

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/logger"
	"github.com/arcanaoficial/arcana-server/internal/session"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, keyLength)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("ArcanaAdmin2025!")
	require.NoError(t, err)
	require.NoError(t, ValidateHash(hash))

	assert.True(t, VerifyPassword(hash, "ArcanaAdmin2025!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword(hash, ""))
	assert.False(t, VerifyPassword("not-a-hash", "ArcanaAdmin2025!"))
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestValidateHash(t *testing.T) {
	assert.Error(t, ValidateHash(""))
	assert.Error(t, ValidateHash("$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"))
}

func TestDecodeKey(t *testing.T) {
	_, err := DecodeKey("abc")
	assert.Error(t, err)

	key, err := DecodeKey("00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	assert.Len(t, key, keyLength)
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTokenService_RoundTrip(t *testing.T) {
	tokens, err := NewTokenService(testKey(t))
	require.NoError(t, err)

	sess := &domain.AdminSession{
		ID:        "sess-1",
		Email:     "admin@arcanaoficial.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	token, err := tokens.Issue(sess)
	require.NoError(t, err)
	assert.Contains(t, token, "v4.local.")

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "admin@arcanaoficial.com", claims.Email)
}

func TestTokenService_RejectsOtherKey(t *testing.T) {
	a, err := NewTokenService(testKey(t))
	require.NoError(t, err)
	b, err := NewTokenService(testKey(t))
	require.NoError(t, err)

	token, err := a.Issue(&domain.AdminSession{ID: "s", Email: "e", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	tokens, err := NewTokenService(testKey(t))
	require.NoError(t, err)

	token, err := tokens.Issue(&domain.AdminSession{ID: "s", Email: "e", ExpiresAt: time.Now().Add(time.Minute)})
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = tokens.Verify(token)
	assert.Error(t, err)
}

func newTestService(t *testing.T) (*Service, session.Store) {
	t.Helper()

	hash, err := HashPassword("secreto")
	require.NoError(t, err)

	sessions, err := session.OpenBadger("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	tokens, err := NewTokenService(testKey(t))
	require.NoError(t, err)

	svc := NewService(Config{
		AdminEmails:  []string{"arcana.circulomagico@gmail.com"},
		PasswordHash: hash,
		TokenTTL:     time.Hour,
	}, tokens, sessions, logger.Discard().Logger)
	return svc, sessions
}

func TestService_LoginAuthenticateLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: "  Arcana.CirculoMagico@gmail.com ", Password: "secreto", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "arcana.circulomagico@gmail.com", res.Session.Email)
	assert.Equal(t, "10.0.0.1", res.Session.ClientIP)

	sess, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, sess.ID)

	require.NoError(t, svc.Logout(ctx, sess.ID))

	_, err = svc.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestService_LoginRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "intruso@gmail.com", Password: "secreto"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "arcana.circulomagico@gmail.com", Password: "nope"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, msgInvalidCredentials, domainerrors.MessageOr(err, ""))
}

func TestService_LoginDisabledWithoutHash(t *testing.T) {
	svc, _ := newTestService(t)
	svc.cfg.PasswordHash = ""

	_, err := svc.Login(context.Background(), LoginRequest{Email: "arcana.circulomagico@gmail.com", Password: "secreto"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestService_AuthenticateRejectsRemovedAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: "arcana.circulomagico@gmail.com", Password: "secreto"})
	require.NoError(t, err)

	svc.cfg.AdminEmails = nil
	_, err = svc.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestService_AuthenticateGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
