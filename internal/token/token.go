// Package token issues and verifies the signed identity claims handed to
// clients after login or signup.
//
// Claims are HS256 JWTs carrying the user id and a fixed expiry. There is
// no server-side session state: a token is valid exactly when its signature
// verifies against the configured secret and it has not yet expired.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = time.Hour

type Subject struct {
	ID string `json:"id"`
}

// Claims mirrors the subject into both "user.id" and the registered "sub"
// claim so older clients that read user.id keep working.
type Claims struct {
	User Subject `json:"user"`
	jwt.RegisteredClaims
}

type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL overrides DefaultTTL. Only honoured by the Issuer.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewIssuer(key []byte, opts ...Option) *Issuer {
	o := buildOptions(opts)
	return &Issuer{key: key, ttl: o.ttl, now: o.now}
}

// Issue signs a claim for subjectID valid from now until now+ttl.
func (i *Issuer) Issue(subjectID string) (string, error) {
	now := i.now()
	claims := Claims{
		User: Subject{ID: subjectID},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(key []byte, opts ...Option) *Verifier {
	o := buildOptions(opts)
	return &Verifier{
		key: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(o.now),
		),
	}
}

var errNoSubject = errors.New("token has no subject")

// Verify resolves raw to the subject id it asserts. Every failure, including
// an empty token, is reported as domain.ErrUnauthorized; Reason can recover
// the underlying cause for logging.
func (v *Verifier) Verify(raw string) (string, error) {
	if raw == "" {
		return "", domain.ErrUnauthorized
	}

	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}); err != nil {
		return "", &rejection{cause: err}
	}

	subjectID := claims.User.ID
	if subjectID == "" {
		subjectID = claims.Subject
	}
	if subjectID == "" {
		return "", &rejection{cause: errNoSubject}
	}
	return subjectID, nil
}

// rejection is ErrUnauthorized to callers but keeps the parse error around.
type rejection struct {
	cause error
}

func (r *rejection) Error() string { return domain.ErrUnauthorized.Error() }

func (r *rejection) Is(target error) bool { return target == domain.ErrUnauthorized }

// Reason returns the internal cause of a rejected Verify call, or "" if err
// carries none. Never send it to clients.
func Reason(err error) string {
	var r *rejection
	if errors.As(err, &r) {
		return r.cause.Error()
	}
	return ""
}
