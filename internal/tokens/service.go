package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Pair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type ExternalProfile struct {
	Email       string
	DisplayName string
}

// IdentityVerifier checks an id token issued by an external provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (ExternalProfile, error)
}

type Service struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string

	verifiers map[string]IdentityVerifier
	now       func() time.Time
}

func NewService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        "storefront",
		verifiers:     map[string]IdentityVerifier{},
		now:           time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) RegisterVerifier(provider string, v IdentityVerifier) {
	if s.verifiers == nil {
		s.verifiers = map[string]IdentityVerifier{}
	}
	s.verifiers[provider] = v
}

func (s *Service) Issue(userID uuid.UUID, role string) (Pair, error) {
	now := s.now()
	access, accessExp, err := s.sign(userID, role, TypeAccess, s.AccessSecret, s.AccessTTL, now)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := s.sign(userID, role, TypeRefresh, s.RefreshSecret, s.RefreshTTL, now)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) VerifyAccess(token string) (Identity, error) {
	return s.verify(token, TypeAccess, s.AccessSecret)
}

func (s *Service) VerifyRefresh(token string) (Identity, error) {
	return s.verify(token, TypeRefresh, s.RefreshSecret)
}

func (s *Service) VerifyExternal(ctx context.Context, idToken, provider string) (ExternalProfile, error) {
	v, ok := s.verifiers[provider]
	if !ok {
		return ExternalProfile{}, fmt.Errorf("%w: unknown provider %q", ErrInvalidToken, provider)
	}
	p, err := v.Verify(ctx, idToken)
	if err != nil {
		return ExternalProfile{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if p.Email == "" {
		return ExternalProfile{}, fmt.Errorf("%w: empty email", ErrInvalidToken)
	}
	return p, nil
}

func (s *Service) sign(userID uuid.UUID, role, typ string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		Role: role,
		Typ:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return signed, exp, err
}

func (s *Service) verify(raw, typ string, secret []byte) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrInvalidToken
	}
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrExpiredToken)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.Typ != typ {
		return Identity{}, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, typ, claims.Typ)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return Identity{UserID: id, Role: claims.Role}, nil
}
