package service

import (
	"context"
	"errors"
	"testing"

	"github.com/platolabs/onboard/internal/onboard/mail"
	"github.com/platolabs/onboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newVerificationService(t *testing.T) (*VerificationService, *fakeMailer) {
	t.Helper()
	mailer := &fakeMailer{}
	return &VerificationService{
		Store:  newTestStore(t),
		Mailer: mailer,
	}, mailer
}

func TestIssueCodeOverwritesPrior(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	user := seedUser(t, svc.Store, uniqueEmail(), "111111")

	code, err := svc.IssueCode(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, code, 6)

	stored, err := svc.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationCode)
	require.Equal(t, code, *stored.VerificationCode)

	// The old code no longer validates.
	_, err = svc.VerifyCode(ctx, "111111")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestIssueCodeUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	_, err := svc.IssueCode(ctx, idx.New().String())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyCodeWrongValueLeavesUserUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	user := seedUser(t, svc.Store, uniqueEmail(), "482913")

	_, err := svc.VerifyCode(ctx, "000000")
	require.ErrorIs(t, err, ErrInvalidCode)

	stored, err := svc.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, stored.Verified)
	require.NotNil(t, stored.VerificationCode)
	require.Equal(t, "482913", *stored.VerificationCode)
}

func TestVerifyCodeConsumesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	user := seedUser(t, svc.Store, uniqueEmail(), "482913")

	verified, err := svc.VerifyCode(ctx, "482913")
	require.NoError(t, err)
	require.Equal(t, user.ID, verified.ID)
	require.True(t, verified.Verified)
	require.Nil(t, verified.VerificationCode)

	stored, err := svc.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.Verified)
	require.Nil(t, stored.VerificationCode)

	// Replaying the same value must fail: the compound predicate no
	// longer matches a verified user.
	_, err = svc.VerifyCode(ctx, "482913")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyCodeEmptyValue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	_, err := svc.VerifyCode(ctx, "")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestResendReplacesPendingCode(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newVerificationService(t)

	user := seedUser(t, svc.Store, uniqueEmail(), "111111")

	require.NoError(t, svc.ResendCode(ctx, user.Email))
	require.Equal(t, 1, mailer.count())

	sent := mailer.lastSent(t)
	require.Equal(t, user.Email, sent.address)
	require.NotEqual(t, "111111", sent.code)

	// Old code is dead, new one works.
	_, err := svc.VerifyCode(ctx, "111111")
	require.ErrorIs(t, err, ErrInvalidCode)

	verified, err := svc.VerifyCode(ctx, sent.code)
	require.NoError(t, err)
	require.Equal(t, user.ID, verified.ID)
}

func TestResendRejectsVerifiedUser(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newVerificationService(t)

	user := seedUser(t, svc.Store, uniqueEmail(), "222222")
	_, err := svc.VerifyCode(ctx, "222222")
	require.NoError(t, err)

	err = svc.ResendCode(ctx, user.Email)
	require.ErrorIs(t, err, ErrAlreadyVerifiedOrNotFound)
	require.Zero(t, mailer.count())
}

func TestResendRejectsUnknownEmail(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newVerificationService(t)

	err := svc.ResendCode(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrAlreadyVerifiedOrNotFound)
	require.Zero(t, mailer.count())
}

func TestResendPropagatesTransportError(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newVerificationService(t)
	mailer.fail = errors.Join(mail.ErrTransport, errors.New("smtp refused"))

	user := seedUser(t, svc.Store, uniqueEmail(), "333333")

	err := svc.ResendCode(ctx, user.Email)
	require.ErrorIs(t, err, mail.ErrTransport)
	require.NotErrorIs(t, err, ErrAlreadyVerifiedOrNotFound)
}
