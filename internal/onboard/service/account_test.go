package service

import (
	"context"
	"testing"
	"time"

	"github.com/platolabs/onboard/internal/onboard/domain"
	"github.com/platolabs/onboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newAccountService(t *testing.T) (*AccountService, *fakeMailer, *jwtx.Keypair) {
	t.Helper()

	st := newTestStore(t)
	mailer := &fakeMailer{}
	keypair, err := jwtx.NewEphemeralKeypair("onboard-test")
	require.NoError(t, err)

	verification := &VerificationService{Store: st, Mailer: mailer}
	return &AccountService{
		Store:        st,
		Verification: verification,
		Signer:       keypair,
		Issuer:       "onboard-test",
		AccessTTL:    time.Hour,
	}, mailer, keypair
}

func TestSignupCreatesUnverifiedUserWithCode(t *testing.T) {
	ctx := context.Background()
	svc, mailer, _ := newAccountService(t)

	user, err := svc.Signup(ctx, "a@b.com", "pw123456", "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, user.Role)
	require.False(t, user.Verified)
	require.NotNil(t, user.VerificationCode)
	require.Len(t, *user.VerificationCode, 6)

	sent := mailer.lastSent(t)
	require.Equal(t, "a@b.com", sent.address)
	require.Equal(t, *user.VerificationCode, sent.code)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccountService(t)

	_, err := svc.Signup(ctx, "a@b.com", "pw123456", "startup")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "a@b.com", "other-password", "investor")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestSignupValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccountService(t)

	_, err := svc.Signup(ctx, "", "pw123456", "")
	require.ErrorIs(t, err, ErrInvalidSignupRequest)

	_, err = svc.Signup(ctx, "a@b.com", "", "")
	require.ErrorIs(t, err, ErrInvalidSignupRequest)

	_, err = svc.Signup(ctx, "a@b.com", "pw123456", "superadmin")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestSignupAcceptsEachKnownRole(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccountService(t)

	for _, role := range []string{"user", "startup", "investor"} {
		user, err := svc.Signup(ctx, uniqueEmail(), "pw123456", role)
		require.NoError(t, err, "role %s", role)
		require.Equal(t, domain.Role(role), user.Role)
	}
}

func TestSignupSucceedsWhenMailerIsDown(t *testing.T) {
	ctx := context.Background()
	svc, mailer, _ := newAccountService(t)
	mailer.fail = context.DeadlineExceeded

	user, err := svc.Signup(ctx, "a@b.com", "pw123456", "")
	require.NoError(t, err)

	// Account exists; resend recovers delivery later.
	stored, err := svc.Store.Users().GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
	require.NotNil(t, stored.VerificationCode)
}

func TestEmailExists(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccountService(t)

	exists, err := svc.EmailExists(ctx, "a@b.com")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = svc.Signup(ctx, "a@b.com", "pw123456", "")
	require.NoError(t, err)

	exists, err = svc.EmailExists(ctx, "a@b.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestLoginLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, mailer, keypair := newAccountService(t)

	user, err := svc.Signup(ctx, "a@b.com", "pw123456", "")
	require.NoError(t, err)

	t.Run("unverified login refused", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "a@b.com", "pw123456")
		require.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("wrong verification code rejected", func(t *testing.T) {
		_, err := svc.Verification.VerifyCode(ctx, "000000")
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("correct code verifies once", func(t *testing.T) {
		code := mailer.lastSent(t).code
		verified, err := svc.Verification.VerifyCode(ctx, code)
		require.NoError(t, err)
		require.Equal(t, user.ID, verified.ID)

		_, err = svc.Verification.VerifyCode(ctx, code)
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("login mints verifiable token", func(t *testing.T) {
		got, token, err := svc.Login(ctx, "a@b.com", "pw123456")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)

		claims, err := keypair.Verify(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, "a@b.com", claims.Email)
	})

	t.Run("wrong password refused", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "a@b.com", "not-the-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email refused with same error", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "stranger@b.com", "pw123456")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
