// Package token issues and verifies signed identity tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is written into the iss claim of every token.
const Issuer = "messagely"

// ErrInvalid matches every verification failure regardless of its kind.
var ErrInvalid = errors.New("token invalid")

// FailureKind classifies why a token was rejected.
type FailureKind int

const (
	// Malformed: empty, undecodable or missing the username claim.
	Malformed FailureKind = iota + 1
	// BadSignature: signed with another secret or an unexpected algorithm.
	BadSignature
	// Expired: past exp or not yet valid.
	Expired
)

func (k FailureKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case BadSignature:
		return "bad_signature"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// VerificationError is returned by Verify. Its message never contains the
// token itself or the signing secret.
type VerificationError struct {
	cause error
	Kind  FailureKind
}

func (e *VerificationError) Error() string {
	return "token " + e.Kind.String()
}

// Unwrap returns the underlying parser error.
func (e *VerificationError) Unwrap() error {
	return e.cause
}

// Is reports ErrInvalid for every kind.
func (e *VerificationError) Is(target error) bool {
	return target == ErrInvalid
}

// KindOf returns the failure kind carried by err, or 0 if err is not a
// verification failure.
func KindOf(err error) FailureKind {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return 0
}

// Identity is the set of claims a token proves.
type Identity struct {
	Username string
}

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service provides token generation and validation.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for issuance and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new token service.
// A zero ttl issues tokens without an exp claim.
func NewService(secret []byte, ttl time.Duration, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative, got %s", ttl)
	}

	s := &Service{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token for the identity.
func (s *Service) Issue(id Identity) (string, error) {
	if id.Username == "" {
		return "", errors.New("cannot issue token for empty username")
	}

	now := s.now()
	claims := Claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and temporal claims of a token and returns the
// identity it carries. Every failure is a *VerificationError.
func (s *Service) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, &VerificationError{Kind: Malformed, cause: jwt.ErrTokenMalformed}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return Identity{}, &VerificationError{Kind: classify(err), cause: err}
	}

	if !parsed.Valid || claims.Username == "" {
		return Identity{}, &VerificationError{Kind: Malformed, cause: jwt.ErrTokenInvalidClaims}
	}

	return Identity{Username: claims.Username}, nil
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return Expired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return BadSignature
	default:
		return Malformed
	}
}
