package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

type authEnv struct {
	users    *memUsers
	store    *memTokens
	enqueuer *memEnqueuer
	register *Register
	verify   *VerifyEmail
	login    *Login
	refresh  *Refresh
	logout   *Logout
}

func newAuthEnv() *authEnv {
	users := newMemUsers()
	store := newMemTokens()
	enqueuer := &memEnqueuer{}
	signer := fakeSigner{}
	hasher := plainHasher{}
	tokens := NewTokens(users, store, signer, time.Minute, time.Hour)
	return &authEnv{
		users:    users,
		store:    store,
		enqueuer: enqueuer,
		register: NewRegister(users, hasher, enqueuer, "http://localhost/verify", time.Hour),
		verify:   NewVerifyEmail(users, tokens),
		login:    NewLogin(users, hasher, tokens),
		refresh:  NewRefresh(signer, store, tokens),
		logout:   NewLogout(users, store),
	}
}

// linkToken pulls the token query parameter out of a verification link.
func linkToken(t *testing.T, link string) string {
	t.Helper()
	i := strings.Index(link, "token=")
	require.GreaterOrEqual(t, i, 0, "link should carry a token: %s", link)
	return link[i+len("token="):]
}

func (e *authEnv) signUpAndVerify(t *testing.T, email, password string) *VerifyEmailResult {
	t.Helper()
	ctx := context.Background()
	_, err := e.register.Execute(ctx, RegisterInput{Email: email, Password: password})
	require.NoError(t, err)
	link := e.enqueuer.sent[len(e.enqueuer.sent)-1].linkURL
	result, err := e.verify.Execute(ctx, VerifyEmailInput{Token: linkToken(t, link)})
	require.NoError(t, err)
	return result
}

func TestRegisterCreatesUnverifiedUser(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()

	result, err := env.register.Execute(ctx, RegisterInput{
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
		Name:     "Ada",
	})
	require.NoError(t, err)
	assert.False(t, result.Resent)
	assert.False(t, result.User.IsEmailVerified)
	assert.Equal(t, 1, env.users.count())
	assert.Equal(t, 1, env.enqueuer.sentCount())

	stored, err := env.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotNil(t, stored.VerifyToken)
	assert.NotEqual(t, "hunter2hunter2", stored.PasswordHash)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	env := newAuthEnv()
	_, err := env.register.Execute(context.Background(), RegisterInput{
		Email:    "not-an-email",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, domerrors.ErrInvalidEmail)
	assert.Equal(t, 0, env.users.count())
}

func TestRegisterFailsWhenEmailCannotBeEnqueued(t *testing.T) {
	env := newAuthEnv()
	env.enqueuer.failWith = errors.New("broker unavailable")

	_, err := env.register.Execute(context.Background(), RegisterInput{
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
	})
	require.Error(t, err, "success must mean a verification email went out")
	assert.Equal(t, 0, env.enqueuer.sentCount())
}

func TestRegisterVerifiedDuplicateConflicts(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	env.signUpAndVerify(t, "ada@example.com", "hunter2hunter2")

	_, err := env.register.Execute(ctx, RegisterInput{
		Email:    "ada@example.com",
		Password: "other-password",
	})
	assert.ErrorIs(t, err, domerrors.ErrEmailTaken)
	assert.Equal(t, 1, env.users.count())
}

func TestRegisterPendingDuplicateRejected(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	_, err := env.register.Execute(ctx, RegisterInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = env.register.Execute(ctx, RegisterInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, domerrors.ErrVerificationPending)
	assert.Equal(t, 1, env.users.count())
	assert.Equal(t, 1, env.enqueuer.sentCount(), "pending duplicate must not resend")
}

func TestRegisterExpiredTokenResendsWithoutSecondRow(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	result, err := env.register.Execute(ctx, RegisterInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	oldToken := *resolveUser(t, env, "ada@example.com").VerifyToken

	// Force the pending token past its expiry.
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, env.users.SetVerifyToken(ctx, result.User.ID, oldToken, expired))

	again, err := env.register.Execute(ctx, RegisterInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.True(t, again.Resent)
	assert.Equal(t, 1, env.users.count(), "resend must not create a second row")
	assert.Equal(t, 2, env.enqueuer.sentCount())
	assert.NotEqual(t, oldToken, *resolveUser(t, env, "ada@example.com").VerifyToken, "token should rotate")
}

func resolveUser(t *testing.T, env *authEnv, email string) *domain.User {
	t.Helper()
	u, err := env.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func resolveUserID(t *testing.T, env *authEnv, email string) domain.UserID {
	t.Helper()
	return resolveUser(t, env, email).ID
}

func TestVerifyEmailAutoLogin(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()

	result := env.signUpAndVerify(t, "ada@example.com", "hunter2hunter2")
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	u, err := env.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsEmailVerified)
	assert.Nil(t, u.VerifyToken, "token is single-use and must be cleared")
}

func TestVerifyEmailBadToken(t *testing.T) {
	env := newAuthEnv()
	_, err := env.verify.Execute(context.Background(), VerifyEmailInput{Token: "nope"})
	assert.ErrorIs(t, err, domerrors.ErrVerificationInvalid)
	_, err = env.verify.Execute(context.Background(), VerifyEmailInput{})
	assert.ErrorIs(t, err, domerrors.ErrVerificationInvalid)
}

func TestLoginUnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	env.signUpAndVerify(t, "ada@example.com", "hunter2hunter2")

	_, errUnknown := env.login.Execute(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})
	_, errWrong := env.login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, errUnknown, domerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, domerrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)
}

func TestLoginUnverifiedFails(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	_, err := env.register.Execute(ctx, RegisterInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = env.login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, domerrors.ErrEmailNotVerified)
}

func TestRefreshRotatesAndOldTokenDies(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	env.signUpAndVerify(t, "ada@example.com", "hunter2hunter2")
	login, err := env.login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	first, err := env.refresh.Execute(ctx, RefreshInput{RefreshToken: login.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshToken, first.Tokens.RefreshToken)

	_, err = env.refresh.Execute(ctx, RefreshInput{RefreshToken: login.Tokens.RefreshToken})
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken, "a refresh token is single-use")

	_, err = env.refresh.Execute(ctx, RefreshInput{RefreshToken: first.Tokens.RefreshToken})
	assert.NoError(t, err, "the replacement token must still work")
}

func TestRefreshGarbageRejected(t *testing.T) {
	env := newAuthEnv()
	for _, tok := range []string{"", "garbage", "refresh|not-a-uuid|also-not"} {
		_, err := env.refresh.Execute(context.Background(), RefreshInput{RefreshToken: tok})
		assert.ErrorIs(t, err, domerrors.ErrInvalidToken, "token %q", tok)
	}
}

func TestRefreshAfterUserDeletedUnauthorized(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()

	result := env.signUpAndVerify(t, "ada@example.com", "hunter2hunter2")
	userID := resolveUserID(t, env, "ada@example.com")
	require.NoError(t, env.users.Delete(ctx, userID))

	// The ledger row outlives the user row; the refresh must read as a bad
	// token, not reveal whether the account still exists.
	_, err := env.refresh.Execute(ctx, RefreshInput{RefreshToken: result.Tokens.RefreshToken})
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken)
	assert.NotErrorIs(t, err, domerrors.ErrUserNotFound)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	env.signUpAndVerify(t, "ada@example.com", "hunter2hunter2")
	login, err := env.login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.refresh.Execute(ctx, RefreshInput{RefreshToken: login.Tokens.RefreshToken})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, domerrors.ErrInvalidToken)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent refresh may succeed")
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	env := newAuthEnv()
	ctx := context.Background()
	verified := env.signUpAndVerify(t, "ada@example.com", "hunter2hunter2")
	userID := resolveUserID(t, env, "ada@example.com")

	second, err := env.login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, env.store.activeCount(userID), 2)

	require.NoError(t, env.logout.Execute(ctx, userID))
	assert.Equal(t, 0, env.store.activeCount(userID))

	for _, tok := range []string{verified.Tokens.RefreshToken, second.Tokens.RefreshToken} {
		_, err := env.refresh.Execute(ctx, RefreshInput{RefreshToken: tok})
		assert.ErrorIs(t, err, domerrors.ErrInvalidToken)
	}
}

func TestLogoutUnknownUser(t *testing.T) {
	env := newAuthEnv()
	err := env.logout.Execute(context.Background(), domain.NewUserID(uuid.New()))
	assert.ErrorIs(t, err, domerrors.ErrUserNotFound)
}
