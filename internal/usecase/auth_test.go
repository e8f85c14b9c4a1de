package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/ErlanBelekov/authmail/internal/password"
	"github.com/ErlanBelekov/authmail/internal/token"
	"github.com/ErlanBelekov/authmail/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

type harness struct {
	repo     *memUserRepo
	mail     *fakeDispatcher
	hasher   *password.Bcrypt
	verifier *token.Verifier
	uc       *usecase.AuthUsecase
}

func newHarness() *harness {
	h := &harness{
		repo:     newMemUserRepo(),
		mail:     &fakeDispatcher{},
		hasher:   password.NewBcrypt(bcrypt.MinCost),
		verifier: token.NewVerifier([]byte(testJWTKey)),
	}
	h.uc = usecase.NewAuthUsecase(h.repo, h.hasher, token.NewIssuer([]byte(testJWTKey)), h.mail, discardLogger())
	return h
}

var validSignup = usecase.SignupInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"}

// ---- Signup ----

func TestSignup_CreatesUserAndIssuesVerifiableClaim(t *testing.T) {
	h := newHarness()

	user, authKey, err := h.uc.Signup(context.Background(), validSignup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.repo.count() != 1 {
		t.Fatalf("store has %d users, want 1", h.repo.count())
	}

	subject, err := h.verifier.Verify(authKey)
	if err != nil {
		t.Fatalf("issued claim does not verify: %v", err)
	}
	if subject != user.ID {
		t.Errorf("claim subject = %q, want %q", subject, user.ID)
	}
}

func TestSignup_StoresHashNotPlaintext(t *testing.T) {
	h := newHarness()

	user, _, err := h.uc.Signup(context.Background(), validSignup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := h.repo.FindByID(context.Background(), user.ID)
	if stored.PasswordHash == validSignup.Password {
		t.Fatal("plaintext password stored")
	}
	if !h.hasher.Verify(validSignup.Password, stored.PasswordHash) {
		t.Fatal("stored hash does not match password")
	}
}

func TestSignup_DuplicateEmail_Conflict(t *testing.T) {
	h := newHarness()

	if _, _, err := h.uc.Signup(context.Background(), validSignup); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, _, err := h.uc.Signup(context.Background(), validSignup)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	if h.repo.count() != 1 {
		t.Errorf("store has %d users, want 1", h.repo.count())
	}
}

func TestSignup_LostRaceOnCreate_Conflict(t *testing.T) {
	h := newHarness()
	// The pre-check passes but the atomic insert reports the conflict, as
	// happens when two signups for one email run concurrently.
	h.repo.createErr = domain.ErrEmailTaken

	_, _, err := h.uc.Signup(context.Background(), validSignup)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestSignup_StoreError_Propagates(t *testing.T) {
	h := newHarness()
	dbErr := errors.New("db down")
	h.repo.createErr = dbErr

	_, _, err := h.uc.Signup(context.Background(), validSignup)
	if !errors.Is(err, dbErr) {
		t.Errorf("want wrapped dbErr, got %v", err)
	}
}

func TestSignup_SigningError_Propagates(t *testing.T) {
	h := newHarness()
	signErr := errors.New("sign failed")
	uc := usecase.NewAuthUsecase(h.repo, h.hasher, &fakeIssuer{
		issue: func(string) (string, error) { return "", signErr },
	}, h.mail, discardLogger())

	_, _, err := uc.Signup(context.Background(), validSignup)
	if !errors.Is(err, signErr) {
		t.Errorf("want wrapped signErr, got %v", err)
	}
}

// ---- Login ----

func TestLogin_CorrectPassword_ReturnsClaimForUser(t *testing.T) {
	h := newHarness()
	user, _, err := h.uc.Signup(context.Background(), validSignup)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	authKey, err := h.uc.Login(context.Background(), validSignup.Email, validSignup.Password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if subject, err := h.verifier.Verify(authKey); err != nil || subject != user.ID {
		t.Errorf("verify = (%q, %v), want %q", subject, err, user.ID)
	}
}

func TestLogin_WrongPasswordAndUnknownEmail_Indistinguishable(t *testing.T) {
	h := newHarness()
	if _, _, err := h.uc.Signup(context.Background(), validSignup); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, wrongPw := h.uc.Login(context.Background(), validSignup.Email, "wrong-password")
	_, unknown := h.uc.Login(context.Background(), "nobody@example.com", validSignup.Password)

	if !errors.Is(wrongPw, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", wrongPw)
	}
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", unknown)
	}
	if wrongPw.Error() != unknown.Error() {
		t.Errorf("errors differ: %q vs %q", wrongPw, unknown)
	}
}

func TestLogin_StoreError_Propagates(t *testing.T) {
	h := newHarness()
	dbErr := errors.New("db down")
	h.repo.findErr = dbErr

	_, err := h.uc.Login(context.Background(), validSignup.Email, validSignup.Password)
	if !errors.Is(err, dbErr) {
		t.Errorf("want wrapped dbErr, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Error("store failure must not look like bad credentials")
	}
}

// ---- ForgetPassword ----

func TestForgetPassword_ReplacesHashAndMailsTemporaryPassword(t *testing.T) {
	h := newHarness()
	user, _, err := h.uc.Signup(context.Background(), validSignup)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	before, _ := h.repo.FindByID(context.Background(), user.ID)

	const temp = "Tmp12345"
	h.uc.WithPasswordGenerator(func() string { return temp })

	if err := h.uc.ForgetPassword(context.Background(), validSignup.Email); err != nil {
		t.Fatalf("forget password: %v", err)
	}

	after, _ := h.repo.FindByID(context.Background(), user.ID)
	if after.PasswordHash == before.PasswordHash {
		t.Fatal("password hash was not replaced")
	}
	if after.PasswordHash == temp {
		t.Fatal("plaintext temporary password stored")
	}
	if !h.hasher.Verify(temp, after.PasswordHash) {
		t.Fatal("new hash does not match temporary password")
	}
	if h.hasher.Verify(validSignup.Password, after.PasswordHash) {
		t.Fatal("old password still valid")
	}

	if len(h.mail.sent) != 1 {
		t.Fatalf("dispatched %d mails, want 1", len(h.mail.sent))
	}
	got := h.mail.sent[0]
	if got.kind != usecase.MailKindPasswordReset {
		t.Errorf("kind = %q", got.kind)
	}
	if got.mail.To != validSignup.Email || got.mail.Subject != "Password reset successfully" {
		t.Errorf("mail = %+v", got.mail)
	}
	if !strings.HasPrefix(got.mail.Body, "Hi ada,") {
		t.Errorf("body should greet the local part, got %q", got.mail.Body)
	}
	if !strings.Contains(got.mail.Body, temp) {
		t.Errorf("body does not contain temporary password: %q", got.mail.Body)
	}
}

func TestForgetPassword_NewLoginWorksWithTemporaryPassword(t *testing.T) {
	h := newHarness()
	if _, _, err := h.uc.Signup(context.Background(), validSignup); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := h.uc.ForgetPassword(context.Background(), validSignup.Email); err != nil {
		t.Fatalf("forget password: %v", err)
	}

	body := h.mail.sent[0].mail.Body
	idx := strings.Index(body, "new password: ")
	if idx == -1 {
		t.Fatalf("no password in body %q", body)
	}
	temp := body[idx+len("new password: ") : idx+len("new password: ")+password.TemporaryLength]

	if _, err := h.uc.Login(context.Background(), validSignup.Email, temp); err != nil {
		t.Fatalf("login with temporary password: %v", err)
	}
}

func TestForgetPassword_UnknownEmail_NotFoundAndNoMail(t *testing.T) {
	h := newHarness()

	err := h.uc.ForgetPassword(context.Background(), "nobody@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if len(h.mail.sent) != 0 {
		t.Errorf("dispatched %d mails, want 0", len(h.mail.sent))
	}
}

func TestForgetPassword_UpdateError_NoMail(t *testing.T) {
	h := newHarness()
	if _, _, err := h.uc.Signup(context.Background(), validSignup); err != nil {
		t.Fatalf("signup: %v", err)
	}
	dbErr := errors.New("db down")
	h.repo.updateErr = dbErr

	err := h.uc.ForgetPassword(context.Background(), validSignup.Email)
	if !errors.Is(err, dbErr) {
		t.Fatalf("want wrapped dbErr, got %v", err)
	}
	if len(h.mail.sent) != 0 {
		t.Error("mail must not be sent when the new password was not stored")
	}
}
