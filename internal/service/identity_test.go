package service

import (
	"context"
	"testing"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/utils"
	"constructedge/internal/utils/blacklist"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuth(f *fixture, bl blacklist.Blacklist) *AuthService {
	return NewAuthService(f.store, utils.PlainCodec{}, testSecret, time.Hour, bl)
}

func TestRegisterThenLoginWithRoleHint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, nil)

	user, err := f.identity.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw", Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, user.Role)

	res, err := auth.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, res.Role)
	assert.NotEmpty(t, res.Token)

	claims, err := auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, res.Principal.PrincipalID(), claims.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.identity.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	_, err = f.identity.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	_, err = f.identity.Register(ctx, RegisterInput{Email: "a@x.com", Password: "other", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	admins, err := f.store.Admins.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestRegisterStoresEmailVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, nil)

	user, err := f.identity.Register(ctx, RegisterInput{Name: " Ann ", Email: " Ann@X.com", Password: " pw ", Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, " Ann@X.com", user.Email)

	manager, err := f.store.Managers.FindByEmail(ctx, " Ann@X.com")
	require.NoError(t, err)
	assert.Equal(t, " Ann ", manager.Name)
	assert.Equal(t, " pw ", manager.Password)

	_, err = auth.Login(ctx, "ann@x.com", " pw ")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err := auth.Login(ctx, " Ann@X.com", " pw ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, res.Role)
}

func TestRegisterRejectsEmailHeldByProfileOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.manager(t, "boss@x.com")

	_, err := f.identity.Register(ctx, RegisterInput{Email: "boss@x.com", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	exists, err := f.store.Users.ExistsByEmail(ctx, "boss@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegisterCreatesExactlyOneProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		hint string
		want domain.RoleTag
	}{
		{"ADMIN", domain.RoleAdmin},
		{"Manager", domain.RoleManager},
		{"employee", domain.RoleEmployee},
		{"", domain.RoleEmployee},
		{"foreman", domain.RoleEmployee},
	}
	for i, tt := range tests {
		email := string(rune('a'+i)) + "@x.com"
		user, err := f.identity.Register(ctx, RegisterInput{Name: "N", Email: email, Password: "pw", Role: tt.hint})
		require.NoError(t, err, tt.hint)
		assert.Equal(t, tt.want, user.Role, tt.hint)

		found := 0
		for _, ps := range f.store.PrincipalStores() {
			ok, err := ps.ExistsByEmail(ctx, email)
			require.NoError(t, err)
			if ok {
				found++
				assert.Equal(t, tt.want, ps.Tag())
			}
		}
		assert.Equal(t, 1, found, tt.hint)
	}
}

func TestRegisteredEmployeeSharesLedgerID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.identity.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@x.com", Password: "pw"})
	require.NoError(t, err)

	employee, err := f.store.Employees.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, employee.UserID)
	assert.Equal(t, "Sam", employee.Name)
	assert.NotNil(t, employee.HireDate)
	assert.Nil(t, employee.RoleID)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.identity.Register(ctx, RegisterInput{Email: "  ", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.identity.Register(ctx, RegisterInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoginPrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, nil)

	_, err := f.directory.CreateAdmin(ctx, ProfileInput{Name: "root", Email: "dup@x.com", Password: "shared"})
	require.NoError(t, err)
	_, err = f.directory.CreateManager(ctx, ProfileInput{Name: "boss", Email: "dup@x.com", Password: "manager-pw"})
	require.NoError(t, err)
	f.employee(t, "dup")
	_, err = f.store.Employees.UpdatePassword(ctx, "dup@x.com", "shared")
	require.NoError(t, err)

	res, err := auth.Login(ctx, "dup@x.com", "shared")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.Role)

	// a mismatch in a higher-precedence store falls through to the next one
	res, err = auth.Login(ctx, "dup@x.com", "manager-pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, res.Role)

	_, err = auth.Login(ctx, "dup@x.com", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody@x.com", "shared")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, nil)

	_, err := f.identity.Register(ctx, RegisterInput{Email: "e@x.com", Password: "old"})
	require.NoError(t, err)

	role, err := f.identity.ResetPassword(ctx, "e@x.com", "new")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, role)

	_, err = auth.Login(ctx, "e@x.com", "old")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	res, err := auth.Login(ctx, "e@x.com", "new")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, res.Role)

	user, err := f.store.Users.FindByEmail(ctx, "e@x.com")
	require.NoError(t, err)
	assert.Equal(t, "new", user.Password)

	_, err = f.identity.ResetPassword(ctx, "ghost@x.com", "new")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = f.identity.ResetPassword(ctx, "e@x.com", " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResetPasswordUpdatesFirstStoreOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.directory.CreateAdmin(ctx, ProfileInput{Email: "dup@x.com", Password: "a"})
	require.NoError(t, err)
	f.employee(t, "dup")

	role, err := f.identity.ResetPassword(ctx, "dup@x.com", "fresh")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	employee, err := f.store.Employees.FindByID(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "pw", employee.Password)
}

func newRedisBlacklist(t *testing.T) *blacklist.RedisBlacklist {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return blacklist.NewRedisBlacklist(client, blacklist.UserBlackList, blacklist.TokenBlackList)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, newRedisBlacklist(t))

	_, err := f.identity.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	first, err := auth.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	second, err := auth.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, first.Token))
	_, err = auth.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, blacklist.ErrTokenRevoked)
	_, err = auth.Revalidate(ctx, first.Token)
	assert.ErrorIs(t, err, blacklist.ErrTokenRevoked)

	_, err = auth.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestBanUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, newRedisBlacklist(t))

	_, err := f.identity.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	res, err := auth.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, auth.BanUser(ctx, res.Principal.PrincipalID(), time.Minute))
	_, err = auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, blacklist.ErrUserBanned)

	assert.Error(t, newAuth(f, nil).BanUser(ctx, "u1", time.Minute))
}

func TestRevalidateAcceptsExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, nil)

	expired, err := utils.GenerateToken(utils.TokenParams{ID: "u1", Role: domain.RoleEmployee, Email: "a@x.com"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	fresh, err := auth.Revalidate(ctx, expired)
	require.NoError(t, err)
	claims, err := auth.Authenticate(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, "a@x.com", claims.Email)

	forged, err := utils.GenerateToken(utils.TokenParams{ID: "u1", Role: domain.RoleAdmin}, "other-secret", time.Hour)
	require.NoError(t, err)
	_, err = auth.Revalidate(ctx, forged)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, nil)

	_, err := f.identity.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw", Role: "admin"})
	require.NoError(t, err)
	res, err := auth.Login(ctx, "ann@x.com", "pw")
	require.NoError(t, err)
	claims, err := auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	principal, err := auth.Profile(ctx, claims)
	require.NoError(t, err)
	admin, ok := principal.(*domain.Admin)
	require.True(t, ok)
	assert.Equal(t, "Ann", admin.Username)
}
