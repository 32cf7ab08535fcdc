package utils

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"constructedge/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const testSecret = "test-secret"

func TestPasswordCodecs(t *testing.T) {
	plain, err := NewPasswordCodec("")
	require.NoError(t, err)
	stored, err := plain.Encode("pw")
	require.NoError(t, err)
	assert.Equal(t, "pw", stored)
	assert.True(t, plain.Matches(stored, "pw"))
	assert.False(t, plain.Matches(stored, "PW"))

	hashed, err := BcryptCodec{Cost: 4}.Encode("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", hashed)
	assert.True(t, BcryptCodec{}.Matches(hashed, "pw"))
	assert.False(t, BcryptCodec{}.Matches(hashed, "other"))
	assert.False(t, BcryptCodec{}.Matches("pw", "pw"))

	_, err = NewPasswordCodec("rot13")
	assert.Error(t, err)
}

func TestParseRoleHint(t *testing.T) {
	tests := map[string]domain.RoleTag{
		"admin":     domain.RoleAdmin,
		" Manager ": domain.RoleManager,
		"MANAGER":   domain.RoleManager,
		"employee":  domain.RoleEmployee,
		"":          domain.RoleEmployee,
		"ceo":       domain.RoleEmployee,
	}
	for hint, want := range tests {
		assert.Equal(t, want, ParseRoleHint(hint), "hint %q", hint)
	}
}

func TestRoleFromClaim(t *testing.T) {
	role, ok := RoleFromClaim("ADMIN")
	assert.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)

	_, ok = RoleFromClaim("admin")
	assert.False(t, ok)
	_, ok = RoleFromClaim("")
	assert.False(t, ok)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(TokenParams{ID: "u1", Role: domain.RoleManager, Email: "m@x.com"}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseAndValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, "m@x.com", claims.Email)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining().Seconds(), 5)

	_, err = ParseAndValidateToken(token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIDsAreUnique(t *testing.T) {
	a, err := GenerateToken(TokenParams{ID: "u1", Role: domain.RoleAdmin}, testSecret, time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken(TokenParams{ID: "u1", Role: domain.RoleAdmin}, testSecret, time.Hour)
	require.NoError(t, err)

	ca, err := ParseAndValidateToken(a, testSecret)
	require.NoError(t, err)
	cb, err := ParseAndValidateToken(b, testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, ca.RegisteredClaims.ID, cb.RegisteredClaims.ID)
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken(TokenParams{ID: "u1", Role: domain.RoleEmployee}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAndValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := ParseAndValidateToken(token, testSecret, jwt.WithoutClaimsValidation())
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), claims.Remaining())
}

func TestTokenWithUnknownRoleIsRejected(t *testing.T) {
	token, err := GenerateToken(TokenParams{ID: "u1", Role: "ROOT"}, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseAndValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromContext(t *testing.T) {
	_, err := ExtractTokenFromContext(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic abc"))
	_, err = ExtractTokenFromContext(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc"))
	token, err := ExtractTokenFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRandomSourceFailure(t *testing.T) {
	prev := randReader
	randReader = failingReader{}
	t.Cleanup(func() { randReader = prev })

	_, err := GenerateRandomString(24)
	assert.ErrorContains(t, err, "entropy exhausted")

	_, err = GenerateToken(TokenParams{ID: "u1", Role: domain.RoleAdmin}, testSecret, time.Hour)
	assert.Error(t, err)

	_, err = GenerateOTP()
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(24)
	require.NoError(t, err)
	assert.Len(t, s, 24)
}
