package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/ErlanBelekov/authmail/internal/metrics"
	"github.com/ErlanBelekov/authmail/internal/password"
	"github.com/ErlanBelekov/authmail/internal/repository"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

// MailDispatcher sends in the background; the caller never sees the outcome.
type MailDispatcher interface {
	Dispatch(ctx context.Context, kind string, m domain.Mail)
}

const (
	MailKindPasswordReset = "password_reset"
	MailKindUser          = "user_mail"

	passwordResetSubject = "Password reset successfully"
)

type AuthUsecase struct {
	users            repository.UserRepository
	hasher           PasswordHasher
	issuer           TokenIssuer
	mail             MailDispatcher
	generatePassword func() string
	logger           *slog.Logger

	// compared against when the email is unknown so login costs the same
	// whether or not the account exists
	dummyHash string
}

func NewAuthUsecase(users repository.UserRepository, hasher PasswordHasher, issuer TokenIssuer, mail MailDispatcher, logger *slog.Logger) *AuthUsecase {
	dummy, err := hasher.Hash("authmail-dummy-password")
	if err != nil {
		logger.Warn("could not precompute dummy hash", "error", err)
	}
	return &AuthUsecase{
		users:            users,
		hasher:           hasher,
		issuer:           issuer,
		mail:             mail,
		generatePassword: password.GenerateTemporary,
		logger:           logger.With("component", "auth_usecase"),
		dummyHash:        dummy,
	}
}

// WithPasswordGenerator replaces the temporary-password source, for tests.
func (u *AuthUsecase) WithPasswordGenerator(gen func() string) *AuthUsecase {
	u.generatePassword = gen
	return u
}

// Login returns domain.ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (u *AuthUsecase) Login(ctx context.Context, email, plaintext string) (string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.hasher.Verify(plaintext, u.dummyHash)
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if !u.hasher.Verify(plaintext, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	return u.issue(user.ID)
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates the user and returns a claim for it. A duplicate email,
// including one that loses a concurrent race, yields domain.ErrEmailTaken.
func (u *AuthUsecase) Signup(ctx context.Context, input SignupInput) (*domain.User, string, error) {
	_, err := u.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, "", domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", domain.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	authKey, err := u.issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, authKey, nil
}

// ForgetPassword replaces the user's password with a generated temporary
// one and mails it. The mail is sent in the background, so a nil error
// means the new hash is stored, not that the mail arrived.
func (u *AuthUsecase) ForgetPassword(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	temp := u.generatePassword()
	hash, err := u.hasher.Hash(temp)
	if err != nil {
		return err
	}
	if err := u.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	u.mail.Dispatch(ctx, MailKindPasswordReset, domain.Mail{
		To:      user.Email,
		Subject: passwordResetSubject,
		Body:    passwordResetBody(user.Email, temp),
	})
	u.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (u *AuthUsecase) issue(userID string) (string, error) {
	authKey, err := u.issuer.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	metrics.TokensIssuedTotal.Inc()
	return authKey, nil
}

func passwordResetBody(email, temp string) string {
	greeting, _, _ := strings.Cut(email, "@")
	return fmt.Sprintf(
		"Hi %s,\n\nYour password is successfully reset..\n\nKindly use this as your new password: %s\n\nThanks!\n",
		greeting, temp,
	)
}
