package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/platolabs/onboard/internal/onboard/domain"
	"github.com/platolabs/onboard/internal/onboard/mail"
	"github.com/platolabs/onboard/internal/onboard/store"
	"github.com/platolabs/onboard/pkg/cryptox"
	"github.com/platolabs/onboard/pkg/slogx"
)

var (
	// ErrInvalidCode covers wrong, already-consumed and never-issued
	// codes alike. One error for all three so responses cannot be used
	// to probe which accounts exist.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrAlreadyVerifiedOrNotFound is the uniform resend rejection.
	ErrAlreadyVerifiedOrNotFound = errors.New("user not found or already verified")

	ErrUserNotFound = errors.New("user not found")
)

// VerificationService issues, re-issues and consumes the single-use
// email verification codes.
type VerificationService struct {
	Store  store.Store
	Mailer mail.Mailer
}

// IssueCode generates a fresh 6-digit code and persists it on the user
// record, overwriting any prior pending code. The overwrite is
// last-write-wins: a code still in flight by email simply stops
// validating once a newer one lands.
func (s *VerificationService) IssueCode(ctx context.Context, userID string) (string, error) {
	log := slogx.FromContext(ctx)

	code, err := cryptox.GenerateVerificationCode()
	if err != nil {
		log.Error("failed to generate verification code", slog.Any("error", err))
		return "", err
	}

	if err := s.Store.Users().SetVerificationCode(ctx, userID, code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		log.Error("failed to persist verification code",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return "", err
	}

	return code, nil
}

// SendCode delivers the code via the mail collaborator. Failures come
// back wrapped in mail.ErrTransport, distinct from validation errors.
func (s *VerificationService) SendCode(ctx context.Context, email, code string) error {
	return s.Mailer.SendVerificationEmail(ctx, email, code)
}

// VerifyCode consumes a pending code exactly once:
// 1. Finds the user whose stored code equals code AND who is unverified
// 2. Marks them verified and clears the code, atomically
// A second attempt with the same value finds no match and fails.
func (s *VerificationService) VerifyCode(ctx context.Context, code string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if code == "" {
		return domain.User{}, ErrInvalidCode
	}

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.Users().GetUserByPendingCode(ctx, code)
		if err != nil {
			return err
		}
		return tx.Users().MarkVerified(ctx, user.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("verification attempted with unmatched code")
			return domain.User{}, ErrInvalidCode
		}
		log.Error("failed to consume verification code", slog.Any("error", err))
		return domain.User{}, err
	}

	user.Verified = true
	user.VerificationCode = nil

	log.Info("user verified", slog.String("user_id", user.ID))
	return user, nil
}

// ResendCode regenerates the pending code for an unverified user and
// re-sends it, invalidating the previous one. Missing users and
// already-verified users get the same rejection.
func (s *VerificationService) ResendCode(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	// 1. The user must exist and still be unverified.
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("resend requested for unknown email")
			return ErrAlreadyVerifiedOrNotFound
		}
		log.Error("failed to fetch user for resend", slog.Any("error", err))
		return err
	}
	if user.Verified {
		log.Warn("resend requested for verified user", slog.String("user_id", user.ID))
		return ErrAlreadyVerifiedOrNotFound
	}

	// 2. Replace the pending code.
	code, err := s.IssueCode(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrAlreadyVerifiedOrNotFound
		}
		return err
	}

	// 3. Deliver. Transport failures propagate as-is so the handler
	// can report them separately from validation rejections.
	if err := s.SendCode(ctx, user.Email, code); err != nil {
		log.Error("failed to send verification email",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("verification code re-sent", slog.String("user_id", user.ID))
	return nil
}
