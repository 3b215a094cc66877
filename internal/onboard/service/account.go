package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/platolabs/onboard/internal/onboard/domain"
	"github.com/platolabs/onboard/internal/onboard/store"
	"github.com/platolabs/onboard/pkg/cryptox"
	"github.com/platolabs/onboard/pkg/idx"
	"github.com/platolabs/onboard/pkg/jwtx"
	"github.com/platolabs/onboard/pkg/slogx"
)

var (
	ErrInvalidSignupRequest = errors.New("invalid signup request")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidRole          = errors.New("invalid role")

	// ErrInvalidCredentials covers unknown email and wrong password
	// alike, so login responses cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailNotVerified = errors.New("email not verified")
)

// AccountService handles signup and credential login.
type AccountService struct {
	Store        store.Store
	Verification *VerificationService

	Signer    jwtx.Signer
	Issuer    string
	AccessTTL time.Duration
}

// Signup registers a new unverified user and sends the verification code.
// 1. Rejects duplicate emails (pre-check plus the unique constraint)
// 2. Hashes the password (Argon2id)
// 3. Creates the user with a pending verification code
// 4. Emails the code; a mail outage here is logged, not fatal, since
//    the resend flow recovers once transport is back
func (s *AccountService) Signup(ctx context.Context, email, password, role string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if email == "" || password == "" {
		log.Warn("signup missing required fields")
		return domain.User{}, ErrInvalidSignupRequest
	}
	parsedRole, ok := domain.ParseRole(role)
	if !ok {
		log.Warn("signup with unknown role", slog.String("role", role))
		return domain.User{}, ErrInvalidRole
	}

	// 2. Check the email is free.
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		log.Warn("signup attempted with existing email")
		return domain.User{}, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check email availability", slog.Any("error", err))
		return domain.User{}, err
	}

	// 3. Hash the password.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	// 4. Generate the initial verification code.
	code, err := cryptox.GenerateVerificationCode()
	if err != nil {
		log.Error("failed to generate verification code", slog.Any("error", err))
		return domain.User{}, err
	}

	// 5. Create the unverified user.
	newUser := domain.User{
		ID:               idx.New().String(),
		Email:            email,
		PasswordHash:     passwordHash,
		Role:             parsedRole,
		Verified:         false,
		VerificationCode: &code,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, newUser)
	})
	if err != nil {
		// A concurrent signup can slip past the pre-check; the unique
		// constraint is the authority.
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("signup lost email race")
			return domain.User{}, ErrUserExists
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	// 6. Send the code. The account exists either way.
	if err := s.Verification.SendCode(ctx, email, code); err != nil {
		log.Error("failed to send signup verification email",
			slog.String("user_id", newUser.ID),
			slog.Any("error", err),
		)
	}

	log.Info("user signed up",
		slog.String("user_id", newUser.ID),
		slog.String("role", parsedRole.String()),
	)

	return newUser, nil
}

// EmailExists reports whether an account with the email already exists.
// Backs the signup form's availability pre-check.
func (s *AccountService) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Login checks credentials and mints a short-lived access token.
// Unverified users are refused until they complete verification.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	if email == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempted with unknown email")
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to fetch user for login", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("login with wrong password", slog.String("user_id", user.ID))
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if !user.Verified {
		log.Warn("login attempted before verification", slog.String("user_id", user.ID))
		return domain.User{}, "", ErrEmailNotVerified
	}

	claims := jwtx.NewAccessClaims(
		user.ID, user.Email, user.Role.String(),
		s.Issuer, s.AccessTTL, time.Now().UTC(),
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}
